package theme

import (
	"errors"
	"testing"

	"github.com/ts4z/brochure/dom"
	"github.com/ts4z/brochure/model"
	"github.com/ts4z/brochure/settings"
)

const page = `<!doctype html><html lang="en"><body>
<button id="theme-toggle" aria-pressed="false">Dark mode</button>
</body></html>`

func parse(t *testing.T, s string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(s)
	if err != nil {
		t.Fatalf("can't parse: %v", err)
	}
	return doc
}

type media bool

func (m media) MatchMedia(q string) bool {
	return q == dom.PrefersDark && bool(m)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		dark   bool
		want   model.Theme
	}{
		{"nothing stored, os light", "", false, model.ThemeLight},
		{"nothing stored, os dark", "", true, model.ThemeDark},
		{"stored light beats os dark", "light", true, model.ThemeLight},
		{"stored dark beats os light", "dark", false, model.ThemeDark},
		{"garbage ignored", "purple", true, model.ThemeDark},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := settings.NewMemoryStore()
			if tt.stored != "" {
				store.Set(settings.ThemeKey, tt.stored)
			}
			if got := Resolve(store, media(tt.dark)); got != tt.want {
				t.Errorf("Resolve = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveNils(t *testing.T) {
	if got := Resolve(nil, nil); got != model.ThemeLight {
		t.Errorf("Resolve(nil, nil) = %v", got)
	}
}

func TestStoredRoundTrip(t *testing.T) {
	for _, th := range []model.Theme{model.ThemeLight, model.ThemeDark} {
		store := settings.NewMemoryStore()
		store.Set(settings.ThemeKey, th.String())
		doc := parse(t, page)
		doc.Update(func() { Wire(doc, Config{Store: store, Media: media(th == model.ThemeLight)}) })
		if got := Current(doc); got != th {
			t.Errorf("stored %v, applied %v", th, got)
		}
	}
}

func TestToggle(t *testing.T) {
	store := settings.NewMemoryStore()
	doc := parse(t, page)
	var sw *Switch
	doc.Update(func() { sw = Wire(doc, Config{Store: store, Media: media(false)}) })
	if !sw.HasControl() {
		t.Fatalf("toggle not found")
	}
	button := doc.GetElementByID("theme-toggle")

	doc.Click(button)
	if got := sw.Current(); got != model.ThemeDark {
		t.Errorf("after click theme = %v", got)
	}
	if !doc.DocumentElement().HasClass(DarkClass) {
		t.Errorf("root lacks dark class")
	}
	if v, _ := button.Attr("aria-pressed"); v != "true" {
		t.Errorf("aria-pressed = %q", v)
	}
	if v, _ := store.Get(settings.ThemeKey); v != "dark" {
		t.Errorf("stored = %q", v)
	}

	doc.Click(button)
	if v, _ := store.Get(settings.ThemeKey); v != "light" {
		t.Errorf("stored after second click = %q", v)
	}
	if doc.DocumentElement().HasClass(DarkClass) {
		t.Errorf("root still dark")
	}
}

func TestToggleReadsRootNotStore(t *testing.T) {
	store := settings.NewMemoryStore()
	doc := parse(t, page)
	var sw *Switch
	doc.Update(func() { sw = Wire(doc, Config{Store: store}) })
	// Someone else changed the store behind the page's back.
	store.Set(settings.ThemeKey, "dark")
	doc.Update(func() { sw.Toggle() })
	if got := sw.Current(); got != model.ThemeDark {
		t.Errorf("toggle from light root = %v, want dark", got)
	}
}

func TestApplyIdempotent(t *testing.T) {
	doc := parse(t, page)
	button := doc.GetElementByID("theme-toggle")
	Apply(doc, button, model.ThemeDark)
	once := doc.String()
	Apply(doc, button, model.ThemeDark)
	if twice := doc.String(); twice != once {
		t.Errorf("second Apply changed the page:\n%s\n%s", once, twice)
	}
}

func TestNoControl(t *testing.T) {
	doc := parse(t, `<html><body></body></html>`)
	sw := Wire(doc, Config{Media: media(true)})
	if sw.HasControl() {
		t.Errorf("HasControl = true")
	}
	if Current(doc) != model.ThemeDark {
		t.Errorf("os hint not applied without a control")
	}
}

type failingStore struct{ settings.Store }

func (failingStore) Set(string, string) error { return errors.New("quota exceeded") }

func TestFailedSaveStillApplies(t *testing.T) {
	doc := parse(t, page)
	sw := Wire(doc, Config{Store: failingStore{settings.NewMemoryStore()}})
	sw.Set(model.ThemeDark)
	if Current(doc) != model.ThemeDark {
		t.Errorf("theme not applied after failed save")
	}
}
