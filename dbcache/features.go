package dbcache

import (
	"context"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ts4z/brochure/model"
	"github.com/ts4z/brochure/state"
	"github.com/ts4z/brochure/varz"
)

const (
	FeatureStorageCacheSize = 16
)

var (
	featureCacheHits   = varz.NewInt("featureCacheHits")
	featureCacheMisses = varz.NewInt("featureCacheMisses")
)

// FeatureStorage caches feature lists by language.  Writes through this
// cache invalidate it; writes by other processes arrive through dbnotify
// and CacheInvalidate.
type FeatureStorage struct {
	cache *lru.Cache[string, []model.FeatureItem]
	next  state.FeatureStorage
}

var _ state.FeatureStorage = (*FeatureStorage)(nil)

func NewFeatureStorage(size int, nx state.FeatureStorage) *FeatureStorage {
	cache, err := lru.New[string, []model.FeatureItem](size)
	if err != nil {
		log.Fatalf("Failed to create FeatureStorage cache: %v", err)
	}
	return &FeatureStorage{
		cache: cache,
		next:  nx,
	}
}

func (f *FeatureStorage) Close() {
	f.next.Close()
}

// FetchFeatures implements state.FeatureStorage.
func (f *FeatureStorage) FetchFeatures(ctx context.Context, lang string) ([]model.FeatureItem, error) {
	if items, ok := f.cache.Get(lang); ok {
		featureCacheHits.Add(1)
		return model.CloneFeatures(items), nil
	}
	featureCacheMisses.Add(1)
	items, err := f.next.FetchFeatures(ctx, lang)
	if err != nil {
		return nil, err
	}
	f.cache.Add(lang, model.CloneFeatures(items))
	return items, nil
}

// SaveFeatures implements state.FeatureStorage.
func (f *FeatureStorage) SaveFeatures(ctx context.Context, lang string, items []model.FeatureItem) error {
	err := f.next.SaveFeatures(ctx, lang, items)
	// Even on error; we don't know what landed.
	f.cache.Remove(lang)
	return err
}

// FetchFeatureLangs implements state.FeatureStorage.  Not cached; only the
// admin tool asks.
func (f *FeatureStorage) FetchFeatureLangs(ctx context.Context) ([]string, error) {
	return f.next.FetchFeatureLangs(ctx)
}

// CacheInvalidate drops lang, or everything if lang is empty.
func (f *FeatureStorage) CacheInvalidate(ctx context.Context, lang string) {
	if lang == "" {
		f.cache.Purge()
		return
	}
	f.cache.Remove(lang)
}

// Warm reloads lang into the cache.
func (f *FeatureStorage) Warm(ctx context.Context, lang string) error {
	if lang == "" {
		return nil
	}
	_, err := f.FetchFeatures(ctx, lang)
	return err
}
