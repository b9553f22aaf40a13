package dbcache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ts4z/brochure/he"
	"github.com/ts4z/brochure/model"
)

type countingFeatures struct {
	fetches int
	byLang  map[string][]model.FeatureItem
}

func (c *countingFeatures) Close() {}

func (c *countingFeatures) FetchFeatures(_ context.Context, lang string) ([]model.FeatureItem, error) {
	c.fetches++
	items, ok := c.byLang[lang]
	if !ok {
		return nil, he.HTTPCodedErrorf(404, "no %s", lang)
	}
	return model.CloneFeatures(items), nil
}

func (c *countingFeatures) SaveFeatures(_ context.Context, lang string, items []model.FeatureItem) error {
	c.byLang[lang] = items
	return nil
}

func (c *countingFeatures) FetchFeatureLangs(context.Context) ([]string, error) {
	return nil, nil
}

func TestFeatureCache(t *testing.T) {
	ctx := context.Background()
	next := &countingFeatures{byLang: map[string][]model.FeatureItem{
		"en": {{Title: "Fast", Desc: "Quick."}},
	}}
	fs := NewFeatureStorage(FeatureStorageCacheSize, next)

	for i := 0; i < 3; i++ {
		if _, err := fs.FetchFeatures(ctx, "en"); err != nil {
			t.Fatal(err)
		}
	}
	if next.fetches != 1 {
		t.Errorf("fetches = %d, want 1", next.fetches)
	}

	got, _ := fs.FetchFeatures(ctx, "en")
	got[0].Title = "mutated"
	if again, _ := fs.FetchFeatures(ctx, "en"); again[0].Title != "Fast" {
		t.Errorf("cache handed out its own slice")
	}

	fs.SaveFeatures(ctx, "en", []model.FeatureItem{{Title: "Faster", Desc: "Quicker."}})
	if got, _ := fs.FetchFeatures(ctx, "en"); got[0].Title != "Faster" {
		t.Errorf("after save: %v", got)
	}

	fs.CacheInvalidate(ctx, "")
	before := next.fetches
	fs.FetchFeatures(ctx, "en")
	if next.fetches != before+1 {
		t.Errorf("purge didn't force a refetch")
	}

	// Misses aren't cached.
	fs.FetchFeatures(ctx, "fr")
	fs.FetchFeatures(ctx, "fr")
	if next.fetches != before+3 {
		t.Errorf("404s were cached")
	}
}

type countingSite struct {
	fetches int
	config  *model.SiteConfig
}

func (c *countingSite) Close() {}

func (c *countingSite) FetchSiteConfig(context.Context) (*model.SiteConfig, error) {
	c.fetches++
	return c.config, nil
}

func (c *countingSite) SaveSiteConfig(_ context.Context, config *model.SiteConfig) error {
	c.config = config
	return nil
}

func TestSiteConfigTTL(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	next := &countingSite{config: &model.SiteConfig{Name: "a"}}
	ss := NewSiteConfigStorage(next, clock)

	ss.FetchSiteConfig(ctx)
	ss.FetchSiteConfig(ctx)
	if next.fetches != 1 {
		t.Errorf("fetches = %d, want 1", next.fetches)
	}
	clock.Advance(ttl + time.Second)
	ss.FetchSiteConfig(ctx)
	if next.fetches != 2 {
		t.Errorf("fetches after ttl = %d, want 2", next.fetches)
	}

	ss.SaveSiteConfig(ctx, &model.SiteConfig{Name: "b"})
	if got, _ := ss.FetchSiteConfig(ctx); got.Name != "b" {
		t.Errorf("after save name = %q", got.Name)
	}
}
