/*
Package features loads the feature cards.

The list comes from a Fetcher.  If that fails for any reason, the fixed
fallback list is shown instead; the failure is logged and nothing else.
*/
package features

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/ts4z/brochure/dom"
	"github.com/ts4z/brochure/model"
	"github.com/ts4z/brochure/task"
	"github.com/ts4z/brochure/textutil"
)

const DefaultContainerID = "features"

var fallback = []model.FeatureItem{
	{Title: "Fast", Desc: "Pages load quickly, even on slow connections."},
	{Title: "Accessible", Desc: "Keyboard friendly and screen reader tested."},
	{Title: "Modular", Desc: "Small independent pieces that are easy to change."},
}

// Fallback returns a copy of the list shown when loading fails.
func Fallback() []model.FeatureItem {
	return model.CloneFeatures(fallback)
}

// RenderCards produces one card per item, in order, with both fields
// escaped.
func RenderCards(items []model.FeatureItem) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(`<article class="feature-card"><h3>`)
		b.WriteString(textutil.EscapeHTML(it.Title))
		b.WriteString(`</h3><p>`)
		b.WriteString(textutil.EscapeHTML(it.Desc))
		b.WriteString(`</p></article>`)
	}
	return b.String()
}

type Config struct {
	ContainerID string
	Fetcher     Fetcher
}

type Loader struct {
	container *dom.Element
	task      *task.Task

	mu       sync.Mutex
	items    []model.FeatureItem
	fallback bool
}

var errNoFetcher = errors.New("no features fetcher")

// Wire starts loading into the container.  It returns nil if there is no
// container.  Call it with the document lock held; the cards are rendered
// later through Update.
func Wire(ctx context.Context, doc *dom.Document, c Config) *Loader {
	id := c.ContainerID
	if id == "" {
		id = DefaultContainerID
	}
	container := doc.GetElementByID(id)
	if container == nil {
		return nil
	}
	l := &Loader{container: container}
	fetcher := c.Fetcher
	l.task = task.Go(ctx, func(ctx context.Context) error {
		var items []model.FeatureItem
		var err error
		if fetcher == nil {
			err = errNoFetcher
		} else {
			items, err = fetcher.Fetch(ctx)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		usedFallback := false
		if err != nil {
			log.Printf("features: using fallback list: %v", err)
			items, usedFallback = Fallback(), true
		}
		var renderErr error
		doc.Update(func() {
			renderErr = l.container.SetInnerHTML(RenderCards(items))
		})
		l.mu.Lock()
		l.items, l.fallback = items, usedFallback
		l.mu.Unlock()
		return renderErr
	})
	return l
}

// Task is the load in progress.
func (l *Loader) Task() *task.Task {
	return l.task
}

// Items returns what was rendered, or nil before the load finishes.
func (l *Loader) Items() []model.FeatureItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return model.CloneFeatures(l.items)
}

func (l *Loader) UsedFallback() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fallback
}
