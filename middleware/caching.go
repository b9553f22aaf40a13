package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// CacheHeaderAdder wraps an http.Handler and adds cache-control headers.
// This is useful for static assets that can be cached by browsers.
type CacheHeaderAdder struct {
	enabled      bool
	maybe        func(r *http.Request) bool
	next         http.Handler
	maxAge       time.Duration
	immutable    bool
	cachePrivate bool
}

// CacheHeaderAdderConfig configures the caching behavior.
type CacheHeaderAdderConfig struct {
	// Enabled comes from config.Caching(); when false the middleware
	// passes requests through untouched.
	Enabled bool

	// Add cache headers, but only if this returns true.
	Maybe func(r *http.Request) bool

	// Next is the handler to wrap.
	Next http.Handler

	// MaxAge is how long the content should be cached.
	MaxAge time.Duration

	// Immutable indicates that the content will never change.
	Immutable bool

	// CachePrivate indicates that the content should only be cached
	// by the browser, not by shared caches (CDNs, proxies).
	CachePrivate bool
}

// NewCacheHeaderAdder creates a new caching middleware.
func NewCacheHeaderAdder(config *CacheHeaderAdderConfig) *CacheHeaderAdder {
	log.Printf("caching: %v", config.Enabled)
	return &CacheHeaderAdder{
		enabled:      config.Enabled,
		maybe:        config.Maybe,
		next:         config.Next,
		maxAge:       config.MaxAge,
		immutable:    config.Immutable,
		cachePrivate: config.CachePrivate,
	}
}

func (ch *CacheHeaderAdder) cacheControl() string {
	parts := []string{"public"}
	if ch.cachePrivate {
		parts[0] = "private"
	}
	if secs := int(ch.maxAge.Seconds()); secs > 0 {
		parts = append(parts, fmt.Sprintf("max-age=%d", secs))
	}
	if ch.immutable {
		parts = append(parts, "immutable")
	}
	return strings.Join(parts, ", ")
}

func (ch *CacheHeaderAdder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !ch.enabled || (ch.maybe != nil && !ch.maybe(r)) {
		ch.next.ServeHTTP(w, r)
		return
	}
	w.Header().Set("Cache-Control", ch.cacheControl())
	ch.next.ServeHTTP(w, r)
}

// NoStore marks responses as uncacheable; pages carry per-visitor theme and
// form state.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
