package state

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ts4z/brochure/bakery"
	"github.com/ts4z/brochure/he"
	"github.com/ts4z/brochure/model"
)

// ParseFeaturesYAML reads a document mapping language to feature list:
//
//	en:
//	  - title: Fast
//	    desc: Pages load quickly.
func ParseFeaturesYAML(data []byte) (map[string][]model.FeatureItem, error) {
	byLang := map[string][]model.FeatureItem{}
	if err := yaml.Unmarshal(data, &byLang); err != nil {
		return nil, fmt.Errorf("can't parse features yaml: %w", err)
	}
	return byLang, nil
}

// BuiltinStorage keeps everything in memory, seeded from embedded YAML.
// Site config starts with one freshly generated cookie key, so cookies do
// not survive a restart.
type BuiltinStorage struct {
	mu         sync.Mutex
	byLang     map[string][]model.FeatureItem
	siteConfig *model.SiteConfig
}

var _ Storage = (*BuiltinStorage)(nil)

func NewBuiltinStorage(featuresYAML []byte, now time.Time) (*BuiltinStorage, error) {
	byLang, err := ParseFeaturesYAML(featuresYAML)
	if err != nil {
		return nil, err
	}
	key, err := bakery.NewKeyPair(now, bakery.DefaultRotation)
	if err != nil {
		return nil, err
	}
	return &BuiltinStorage{
		byLang: byLang,
		siteConfig: &model.SiteConfig{
			Name:       "brochure",
			CookieKeys: []model.CookieKeyPair{key},
		},
	}, nil
}

func (bs *BuiltinStorage) Close() {}

func (bs *BuiltinStorage) FetchFeatures(ctx context.Context, lang string) ([]model.FeatureItem, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if items, ok := bs.byLang[lang]; ok {
		return model.CloneFeatures(items), nil
	}
	return nil, he.HTTPCodedErrorf(404, "no features for language %q", lang)
}

func (bs *BuiltinStorage) SaveFeatures(ctx context.Context, lang string, items []model.FeatureItem) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.byLang[lang] = model.CloneFeatures(items)
	return nil
}

func (bs *BuiltinStorage) FetchFeatureLangs(ctx context.Context) ([]string, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	langs := make([]string, 0, len(bs.byLang))
	for l := range bs.byLang {
		langs = append(langs, l)
	}
	slices.Sort(langs)
	return langs, nil
}

func (bs *BuiltinStorage) FetchSiteConfig(ctx context.Context) (*model.SiteConfig, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	cpy := *bs.siteConfig
	cpy.CookieKeys = slices.Clone(bs.siteConfig.CookieKeys)
	return &cpy, nil
}

func (bs *BuiltinStorage) SaveSiteConfig(ctx context.Context, config *model.SiteConfig) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	cpy := *config
	cpy.CookieKeys = slices.Clone(config.CookieKeys)
	bs.siteConfig = &cpy
	return nil
}
