// Package menu wires the mobile navigation toggle.
package menu

import (
	"github.com/ts4z/brochure/dom"
)

const (
	DefaultToggleID = "menu-toggle"
	DefaultNavID    = "site-nav"
	OpenClass       = "open"
)

type Config struct {
	ToggleID string
	NavID    string
}

func (c *Config) withDefaults() Config {
	out := Config{ToggleID: DefaultToggleID, NavID: DefaultNavID}
	if c != nil {
		if c.ToggleID != "" {
			out.ToggleID = c.ToggleID
		}
		if c.NavID != "" {
			out.NavID = c.NavID
		}
	}
	return out
}

type Toggle struct {
	button *dom.Element
	nav    *dom.Element
}

// Wire registers the click handler.  It returns nil, and does nothing, if
// either element is missing.  Call it with the document lock held.
func Wire(doc *dom.Document, c *Config) *Toggle {
	conf := c.withDefaults()
	button := doc.GetElementByID(conf.ToggleID)
	nav := doc.GetElementByID(conf.NavID)
	if button == nil || nav == nil {
		return nil
	}
	t := &Toggle{button: button, nav: nav}
	button.On("click", func(*dom.Event) { t.Toggle() })
	return t
}

// Expanded reads aria-expanded; anything but "true" is collapsed.
func (t *Toggle) Expanded() bool {
	v, _ := t.button.Attr("aria-expanded")
	return v == "true"
}

// Toggle flips the menu.  It must run with the document lock held.
func (t *Toggle) Toggle() {
	t.Set(!t.Expanded())
}

// Set opens or closes the menu.
func (t *Toggle) Set(expanded bool) {
	t.button.SetAttr("aria-expanded", boolAttr(expanded))
	t.nav.SetClass(OpenClass, expanded)
	t.nav.SetAttr("aria-hidden", boolAttr(!expanded))
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
