// Package scroll makes marked in-page links scroll smoothly instead of
// jumping.
package scroll

import (
	"log"
	"strings"

	"github.com/ts4z/brochure/dom"
)

const DefaultMarker = "data-scroll"

type Config struct {
	// Marker is the attribute that opts an anchor in.
	Marker   string
	Viewport dom.Viewport
	History  dom.History
}

type Scroller struct {
	doc    *dom.Document
	marker string
	view   dom.Viewport
	hist   dom.History
}

// Wire installs the document click handler.  It returns nil without a
// viewport.  Call it with the document lock held.
func Wire(doc *dom.Document, c Config) *Scroller {
	if c.Viewport == nil {
		return nil
	}
	s := &Scroller{
		doc:    doc,
		marker: c.Marker,
		view:   c.Viewport,
		hist:   c.History,
	}
	if s.marker == "" {
		s.marker = DefaultMarker
	}
	doc.On("click", s.handle)
	return s
}

// Target finds the element a click on origin should scroll to.
func (s *Scroller) Target(origin *dom.Element) (*dom.Element, string) {
	if origin == nil {
		return nil, ""
	}
	a := origin.Closest("a[" + s.marker + "]")
	if a == nil {
		return nil, ""
	}
	href, _ := a.Attr("href")
	if !strings.HasPrefix(href, "#") || len(href) == 1 {
		return nil, ""
	}
	// The fragment is used as a selector.  Something like "#!bang" isn't a
	// valid one and matches nothing.
	target := s.doc.QuerySelector(href)
	if target == nil {
		return nil, ""
	}
	return target, href
}

func (s *Scroller) handle(ev *dom.Event) {
	target, href := s.Target(ev.Target)
	if target == nil {
		return
	}
	ev.PreventDefault()
	s.view.ScrollIntoView(target, dom.ScrollOptions{Behavior: "smooth", Block: "start"})
	if s.hist != nil {
		if err := s.hist.ReplaceState(href); err != nil {
			log.Printf("scroll: can't replace history state: %v", err)
		}
	}
}
