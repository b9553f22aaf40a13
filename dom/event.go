package dom

import (
	"golang.org/x/net/html"
)

// Handler reacts to an event.  It runs with the document lock held.
type Handler func(ev *Event)

type Event struct {
	Type   string
	Target *Element
	// CurrentTarget is the element whose handler is running, or nil when the
	// document-level handler is.
	CurrentTarget *Element

	defaultPrevented bool
	stopped          bool
}

func (ev *Event) PreventDefault() {
	ev.defaultPrevented = true
}

func (ev *Event) DefaultPrevented() bool {
	return ev.defaultPrevented
}

func (ev *Event) StopPropagation() {
	ev.stopped = true
}

func (d *Document) listen(n *html.Node, typ string, h Handler) {
	byType, ok := d.handlers[n]
	if !ok {
		byType = map[string]Handler{}
		d.handlers[n] = byType
	}
	if h == nil {
		delete(byType, typ)
		return
	}
	byType[typ] = h
}

// On registers the document-level handler for typ.  There is one handler
// per event type per target; registering again replaces it, and a nil
// handler removes it.
func (d *Document) On(typ string, h Handler) {
	d.listen(d.root, typ, h)
}

// On registers e's handler for typ, replacing any earlier one.
func (e *Element) On(typ string, h Handler) {
	e.doc.listen(e.n, typ, h)
}

// Dispatch delivers an event of type typ to target, then bubbles it through
// the ancestors and finally the document.  It returns the event so callers
// can see whether the default action was prevented.
func (d *Document) Dispatch(target *Element, typ string) *Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dispatchLocked(target, typ)
}

func (d *Document) dispatchLocked(target *Element, typ string) *Event {
	ev := &Event{Type: typ, Target: target}
	if target == nil {
		return ev
	}
	for n := target.n; n != nil && !ev.stopped; n = n.Parent {
		h, ok := d.handlers[n][typ]
		if !ok {
			continue
		}
		if n == d.root {
			ev.CurrentTarget = nil
		} else {
			ev.CurrentTarget = d.wrap(n)
		}
		h(ev)
	}
	return ev
}

func (d *Document) Click(target *Element) *Event {
	return d.Dispatch(target, "click")
}

func (d *Document) Submit(form *Element) *Event {
	return d.Dispatch(form, "submit")
}
