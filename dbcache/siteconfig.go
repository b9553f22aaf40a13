package dbcache

import (
	"context"
	"sync"
	"time"

	"github.com/ts4z/brochure/model"
	"github.com/ts4z/brochure/state"
	"github.com/ts4z/brochure/varz"
)

const (
	ttl = time.Duration(30) * time.Minute
)

type Nower interface {
	Now() time.Time
}

// SiteStorage caches the site config for a while.  Other writers are
// noticed through CacheInvalidate, or after the TTL at worst.
type SiteStorage struct {
	clock Nower
	next  state.SiteStorage

	mu           sync.Mutex
	cachedConfig *model.SiteConfig
	fetchedAt    time.Time
}

var _ state.SiteStorage = (*SiteStorage)(nil)

var (
	siteStorageCacheHits   = varz.NewInt("siteStorageCacheHits")
	siteStorageCacheMisses = varz.NewInt("siteStorageCacheMisses")
)

func NewSiteConfigStorage(next state.SiteStorage, clock Nower) *SiteStorage {
	return &SiteStorage{
		next:  next,
		clock: clock,
	}
}

func (s *SiteStorage) Close() {
	s.next.Close()
}

// FetchSiteConfig implements state.SiteStorage.
func (s *SiteStorage) FetchSiteConfig(ctx context.Context) (*model.SiteConfig, error) {
	s.mu.Lock()
	if s.cachedConfig != nil && s.fetchedAt.Add(ttl).After(s.clock.Now()) {
		config := s.cachedConfig
		s.mu.Unlock()
		siteStorageCacheHits.Add(1)
		return config, nil
	}
	s.mu.Unlock()

	siteStorageCacheMisses.Add(1)
	config, err := s.next.FetchSiteConfig(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.fetchedAt = s.clock.Now()
	s.cachedConfig = config
	s.mu.Unlock()
	return config, nil
}

// SaveSiteConfig implements state.SiteStorage.
func (s *SiteStorage) SaveSiteConfig(ctx context.Context, config *model.SiteConfig) error {
	err := s.next.SaveSiteConfig(ctx, config)
	s.CacheInvalidate(ctx, "")
	return err
}

func (s *SiteStorage) CacheInvalidate(ctx context.Context, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cachedConfig = nil
}
