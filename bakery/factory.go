package bakery

import (
	"context"
	"fmt"
	"sync"

	"github.com/ts4z/brochure/model"
)

type SiteConfigFetcher interface {
	FetchSiteConfig(ctx context.Context) (*model.SiteConfig, error)
}

// Factory hands out a Bakery for the current site config.
type Factory struct {
	clock Clock
	site  SiteConfigFetcher
	opts  Options

	mu     sync.Mutex
	from   *model.SiteConfig
	bakery *Bakery
}

func NewFactory(clock Clock, site SiteConfigFetcher, opts Options) *Factory {
	return &Factory{clock: clock, site: site, opts: opts}
}

// Bakery returns a Bakery, rebuilding it if the site config is a different
// value than last time.  Caching storage returns the same pointer until it
// refetches.
func (f *Factory) Bakery(ctx context.Context) (*Bakery, error) {
	conf, err := f.site.FetchSiteConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't fetch site config for cookies: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bakery == nil || conf != f.from {
		opts := f.opts
		if opts.Domain == "" {
			opts.Domain = conf.CookieDomain
		}
		f.bakery = New(f.clock, conf, opts)
		f.from = conf
	}
	return f.bakery, nil
}
