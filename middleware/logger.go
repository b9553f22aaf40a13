package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/ts4z/brochure/varz"
)

type Clock interface {
	Now() time.Time
}

var responsesByCode = varz.NewMap("responsesByCode")

// RequestLogger is a middleware that writes an access log line per request.
type RequestLogger struct {
	next  http.Handler
	clock Clock
}

func NewRequestLogger(next http.Handler, clock Clock) *RequestLogger {
	return &RequestLogger{next: next, clock: clock}
}

func remoteAddr(r *http.Request) string {
	if r.Header.Get("X-Forwarded-For") != "" {
		return r.Header.Get("X-Forwarded-For")
	}
	return r.RemoteAddr
}

func (rl *RequestLogger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := rl.clock.Now()
	ww := &codeWatcher{w: w}
	rl.next.ServeHTTP(ww, r)
	code := ww.Code()
	duration := rl.clock.Now().Sub(start)
	responsesByCode.Add(http.StatusText(code), 1)
	log.Printf("[access log] %d %s %v %v %dB (%v)", code, r.Method, remoteAddr(r), r.URL.Path, ww.bytes, duration)
}
