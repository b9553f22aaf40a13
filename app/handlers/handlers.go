package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"
)

func HandleRobotsTXT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	data := []string{
		"User-agent: *",
		"Allow: /",
		"Disallow: /theme",
		"Disallow: /debug/",
	}
	for _, line := range data {
		io.WriteString(w, line+"\r\n")
	}
}

// Pinger is anything healthz should check, e.g. a *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Healthz answers 200 "ok" if every pinger responds within a couple of
// seconds.
func Healthz(pingers ...Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, p := range pingers {
			if err := p.PingContext(ctx); err != nil {
				log.Printf("healthz: %v", err)
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "ok\n")
	}
}
