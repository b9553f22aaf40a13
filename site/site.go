// Package site wires every page behavior onto a document at load time.
package site

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ts4z/brochure/contact"
	"github.com/ts4z/brochure/dom"
	"github.com/ts4z/brochure/features"
	"github.com/ts4z/brochure/i18n"
	"github.com/ts4z/brochure/menu"
	"github.com/ts4z/brochure/model"
	"github.com/ts4z/brochure/scroll"
	"github.com/ts4z/brochure/settings"
	"github.com/ts4z/brochure/theme"
)

type Config struct {
	// Lang picks the page's copy and form field names.
	Lang   string
	Store  settings.Store
	Window *dom.Window

	Clock          clockwork.Clock
	SendDelay      time.Duration
	StatusDuration time.Duration
	OnSent         func(model.ContactSubmission)

	Features features.Fetcher
}

// Page holds the wired components.  Any of them may be nil when the
// document lacks its elements, except Theme.
type Page struct {
	Catalog  *i18n.Catalog
	Menu     *menu.Toggle
	Theme    *theme.Switch
	Scroll   *scroll.Scroller
	Contact  *contact.Form
	Features *features.Loader
}

// Init wires everything.  It takes the document lock itself.
func Init(ctx context.Context, doc *dom.Document, c *Config) *Page {
	cat := i18n.Lookup(c.Lang)
	p := &Page{Catalog: cat}

	var (
		view  dom.Viewport
		hist  dom.History
		media dom.MediaMatcher
	)
	if c.Window != nil {
		view, hist, media = c.Window, c.Window, c.Window
	}

	doc.Update(func() {
		p.Menu = menu.Wire(doc, nil)
		p.Theme = theme.Wire(doc, theme.Config{Store: c.Store, Media: media})
		p.Scroll = scroll.Wire(doc, scroll.Config{Viewport: view, History: hist})
		p.Contact = contact.Wire(ctx, doc, contact.Config{
			Fields:         cat.Fields,
			Messages:       cat.Contact,
			Clock:          c.Clock,
			SendDelay:      c.SendDelay,
			StatusDuration: c.StatusDuration,
			OnSent:         c.OnSent,
		})
		p.Features = features.Wire(ctx, doc, features.Config{Fetcher: c.Features})
	})
	return p
}

// Settle waits for the feature load and any contact send in flight.  It
// does not wait for the sent message to clear.
func (p *Page) Settle(ctx context.Context) error {
	if p.Features != nil {
		if err := p.Features.Task().WaitContext(ctx); err != nil {
			return err
		}
	}
	if p.Contact != nil {
		if t := p.Contact.Sending(); t != nil {
			if err := t.WaitContext(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
