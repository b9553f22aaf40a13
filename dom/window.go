package dom

import (
	"fmt"
	"net/url"
	"sync"
)

// PrefersDark is the media query for the OS dark color scheme.
const PrefersDark = "(prefers-color-scheme: dark)"

type ScrollOptions struct {
	Behavior string // "smooth" or "auto"
	Block    string // "start", "center", ...
}

// ScrollRecord is one ScrollIntoView call seen by a Window.
type ScrollRecord struct {
	TargetID string
	Options  ScrollOptions
}

// Viewport scrolls elements into view.
type Viewport interface {
	ScrollIntoView(target *Element, opts ScrollOptions)
}

// History changes the current history entry.
type History interface {
	// ReplaceState replaces the current entry's URL with ref, resolved
	// against the current URL, without navigating.
	ReplaceState(ref string) error
}

// MediaMatcher answers media queries.
type MediaMatcher interface {
	MatchMedia(query string) bool
}

// Window is an in-memory Viewport, History and MediaMatcher.  It records
// what happened so the server and tests can inspect it.
type Window struct {
	mu       sync.Mutex
	location *url.URL
	entries  int
	media    map[string]bool
	scrolls  []ScrollRecord
}

var (
	_ Viewport     = (*Window)(nil)
	_ History      = (*Window)(nil)
	_ MediaMatcher = (*Window)(nil)
)

func NewWindow(rawURL string) (*Window, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("can't parse window url: %w", err)
	}
	return &Window{
		location: u,
		entries:  1,
		media:    map[string]bool{},
	}, nil
}

// SetMedia fixes the answer for a media query.  Unknown queries don't match.
func (w *Window) SetMedia(query string, matches bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.media[query] = matches
}

func (w *Window) MatchMedia(query string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.media[query]
}

func (w *Window) ScrollIntoView(target *Element, opts ScrollOptions) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scrolls = append(w.scrolls, ScrollRecord{TargetID: target.ID(), Options: opts})
}

func (w *Window) Scrolls() []ScrollRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]ScrollRecord, len(w.scrolls))
	copy(out, w.scrolls)
	return out
}

func (w *Window) ReplaceState(ref string) error {
	r, err := url.Parse(ref)
	if err != nil {
		return fmt.Errorf("can't parse history url %q: %w", ref, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.location = w.location.ResolveReference(r)
	return nil
}

// Location is the current URL.
func (w *Window) Location() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.location.String()
}

// HistoryLength counts entries; ReplaceState never adds one.
func (w *Window) HistoryLength() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entries
}
