/*
Package theme resolves, applies and toggles the light/dark theme.

The effective theme is the stored preference if there is one, otherwise the
OS color-scheme hint, otherwise light.  The applied theme lives on the root
element as the "dark" class; toggling reads it from there rather than from
the store.
*/
package theme

import (
	"log"

	"github.com/ts4z/brochure/dom"
	"github.com/ts4z/brochure/model"
	"github.com/ts4z/brochure/settings"
)

const (
	DarkClass       = "dark"
	DefaultToggleID = "theme-toggle"
)

// Stored returns the saved preference.  Values other than light and dark
// are ignored.
func Stored(store settings.Store) (model.Theme, bool) {
	if store == nil {
		return model.ThemeLight, false
	}
	v, ok := store.Get(settings.ThemeKey)
	if !ok {
		return model.ThemeLight, false
	}
	th, err := model.ParseTheme(v)
	if err != nil {
		return model.ThemeLight, false
	}
	return th, true
}

// Resolve computes the effective theme.  Either argument may be nil.
func Resolve(store settings.Store, media dom.MediaMatcher) model.Theme {
	if th, ok := Stored(store); ok {
		return th
	}
	if media != nil && media.MatchMedia(dom.PrefersDark) {
		return model.ThemeDark
	}
	return model.ThemeLight
}

// Current reads the applied theme off the root element.
func Current(doc *dom.Document) model.Theme {
	root := doc.DocumentElement()
	if root != nil && root.HasClass(DarkClass) {
		return model.ThemeDark
	}
	return model.ThemeLight
}

// Apply sets the root class and, if toggle is non-nil, its pressed state.
func Apply(doc *dom.Document, toggle *dom.Element, th model.Theme) {
	dark := th == model.ThemeDark
	if root := doc.DocumentElement(); root != nil {
		root.SetClass(DarkClass, dark)
	}
	if toggle != nil {
		if dark {
			toggle.SetAttr("aria-pressed", "true")
		} else {
			toggle.SetAttr("aria-pressed", "false")
		}
	}
}

type Config struct {
	Store    settings.Store
	Media    dom.MediaMatcher
	ToggleID string
}

type Switch struct {
	doc    *dom.Document
	store  settings.Store
	toggle *dom.Element
}

// Wire applies the effective theme and, if the toggle control exists,
// registers its click handler.  It never returns nil: the theme applies
// even without a control.  Call it with the document lock held.
func Wire(doc *dom.Document, c Config) *Switch {
	id := c.ToggleID
	if id == "" {
		id = DefaultToggleID
	}
	s := &Switch{
		doc:    doc,
		store:  c.Store,
		toggle: doc.GetElementByID(id),
	}
	Apply(doc, s.toggle, Resolve(c.Store, c.Media))
	if s.toggle != nil {
		s.toggle.On("click", func(*dom.Event) { s.Toggle() })
	}
	return s
}

func (s *Switch) Current() model.Theme {
	return Current(s.doc)
}

// HasControl reports whether the page has a toggle button.
func (s *Switch) HasControl() bool {
	return s.toggle != nil
}

// Toggle switches to the opposite of the applied theme and saves it.  It
// must run with the document lock held.
func (s *Switch) Toggle() model.Theme {
	next := Current(s.doc).Opposite()
	s.Set(next)
	return next
}

// Set saves and applies th.  A failed save is logged; the theme is applied
// regardless.
func (s *Switch) Set(th model.Theme) {
	if s.store != nil {
		if err := s.store.Set(settings.ThemeKey, th.String()); err != nil {
			log.Printf("theme: can't save preference %v: %v", th, err)
		}
	}
	Apply(s.doc, s.toggle, th)
}
