// package prefs is middleware that puts a cookie-backed settings.Store in
// the request context, so page code reads and writes preferences without
// knowing about cookies.
package prefs

import (
	"context"
	"log"
	"net/http"

	"github.com/ts4z/brochure/bakery"
	"github.com/ts4z/brochure/dep"
	"github.com/ts4z/brochure/settings"
)

type BakeryFactory interface {
	Bakery(ctx context.Context) (*bakery.Bakery, error)
}

type PrefsToContext struct {
	bakeryFactory BakeryFactory
	next          http.Handler
}

// ServeHTTP implements the http.Handler interface and forwards to the next handler
func (p *PrefsToContext) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	b, err := p.bakeryFactory.Bakery(ctx)
	if err != nil {
		// Preferences just won't stick for this request.
		log.Printf("can't get bakery for preferences: %v", err)
		ctx = settings.InContext(ctx, settings.NewMemoryStore())
	} else {
		ctx = settings.InContext(ctx, settings.NewCookieStore(b, w, r))
	}

	p.next.ServeHTTP(w, r.WithContext(ctx))
}

type Config struct {
	BakeryFactory BakeryFactory
	Next          http.Handler
}

func Handler(cf *Config) http.Handler {
	return &PrefsToContext{
		bakeryFactory: dep.Required(cf.BakeryFactory),
		next:          dep.Required(cf.Next),
	}
}
