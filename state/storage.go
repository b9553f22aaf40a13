package state

// package state manages persistence.

import (
	"context"

	"github.com/ts4z/brochure/model"
)

type Closer interface {
	Close()
}

// FeatureStorage holds one ordered feature list per language.
type FeatureStorage interface {
	Closer

	// FetchFeatures returns a 404 he.HTTPError for a language with no list.
	FetchFeatures(ctx context.Context, lang string) ([]model.FeatureItem, error)
	SaveFeatures(ctx context.Context, lang string, items []model.FeatureItem) error
	FetchFeatureLangs(ctx context.Context) ([]string, error)
}

type SiteStorage interface {
	Closer

	FetchSiteConfig(ctx context.Context) (*model.SiteConfig, error)
	SaveSiteConfig(ctx context.Context, config *model.SiteConfig) error
}

type Storage interface {
	FeatureStorage
	SiteStorage
}

// Notification channels, one per table, carry a JSON NotificationEvent.
const (
	FeaturesTable   = "features"
	SiteConfigTable = "site_config"
)
