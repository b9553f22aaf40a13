package state

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ts4z/brochure/he"
	"github.com/ts4z/brochure/model"
)

const sample = `
en:
  - title: Fast
    desc: Quick.
  - title: "<b>Bold</b>"
    desc: Escaped later.
es:
  - title: Rápido
    desc: Veloz.
`

func TestBuiltinStorage(t *testing.T) {
	ctx := context.Background()
	bs, err := NewBuiltinStorage([]byte(sample), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewBuiltinStorage: %v", err)
	}

	en, err := bs.FetchFeatures(ctx, "en")
	if err != nil {
		t.Fatal(err)
	}
	want := []model.FeatureItem{{Title: "Fast", Desc: "Quick."}, {Title: "<b>Bold</b>", Desc: "Escaped later."}}
	if diff := cmp.Diff(want, en); diff != "" {
		t.Errorf("en features (-want +got):\n%s", diff)
	}

	// Callers get copies.
	en[0].Title = "changed"
	again, _ := bs.FetchFeatures(ctx, "en")
	if again[0].Title != "Fast" {
		t.Errorf("storage shared its slice")
	}

	if _, err := bs.FetchFeatures(ctx, "fr"); !he.IsNotFound(err) {
		t.Errorf("fr: err = %v, want 404", err)
	}

	if err := bs.SaveFeatures(ctx, "fr", []model.FeatureItem{{Title: "Vite", Desc: "Rapide."}}); err != nil {
		t.Fatal(err)
	}
	langs, _ := bs.FetchFeatureLangs(ctx)
	if diff := cmp.Diff([]string{"en", "es", "fr"}, langs); diff != "" {
		t.Errorf("langs (-want +got):\n%s", diff)
	}
}

func TestBuiltinSiteConfig(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bs, err := NewBuiltinStorage([]byte(sample), now)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := bs.FetchSiteConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.CookieKeys) != 1 || !sc.CookieKeys[0].Validity.MintFrom.Equal(now) {
		t.Fatalf("cookie keys = %+v", sc.CookieKeys)
	}

	sc.Name = "renamed"
	if fresh, _ := bs.FetchSiteConfig(ctx); fresh.Name == "renamed" {
		t.Errorf("FetchSiteConfig returned shared config")
	}
	if err := bs.SaveSiteConfig(ctx, sc); err != nil {
		t.Fatal(err)
	}
	if fresh, _ := bs.FetchSiteConfig(ctx); fresh.Name != "renamed" {
		t.Errorf("saved name = %q", fresh.Name)
	}
}

func TestParseFeaturesYAMLError(t *testing.T) {
	if _, err := ParseFeaturesYAML([]byte("en: [unterminated")); err == nil {
		t.Errorf("bad yaml parsed")
	}
}
