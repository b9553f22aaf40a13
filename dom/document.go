/*
Package dom is a small headless document model.

It is just enough of a browser document for the page behaviors to run on the
server and in tests: an HTML tree (golang.org/x/net/html), CSS selectors
(goquery/cascadia), form control values, and event dispatch.

A Document is guarded by a single lock, which stands in for the browser's
UI thread.  Dispatch holds it while handlers run; asynchronous continuations
must go through Update.  Nothing else in this package locks, so handlers
must not call Update or Dispatch themselves.
*/
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Document struct {
	mu       sync.Mutex
	root     *html.Node
	handlers map[*html.Node]map[string]Handler
	values   map[*html.Node]string
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("can't parse document: %w", err)
	}
	return &Document{
		root:     root,
		handlers: map[*html.Node]map[string]Handler{},
		values:   map[*html.Node]string{},
	}, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Update runs fn with the document lock held.
func (d *Document) Update(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, n: n}
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			return d.wrap(c)
		}
	}
	return nil
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *Element {
	return d.QuerySelector("body")
}

// GetElementByID walks the tree rather than building a selector, so ids
// that aren't valid CSS identifiers still work.
func (d *Document) GetElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	return d.wrap(findAttr(d.root, "id", id))
}

// findAttr returns the first element below root whose attribute key equals
// val, in document order.
func findAttr(root *html.Node, key, val string) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if c.Type == html.ElementNode && attr(c, key) == val {
				found = c
				return
			}
			walk(c)
		}
	}
	walk(root)
	return found
}

// QuerySelector returns the first match.  An invalid selector matches
// nothing.
func (d *Document) QuerySelector(selector string) *Element {
	sel := goquery.NewDocumentFromNode(d.root).Find(selector)
	if sel.Length() == 0 {
		return nil
	}
	return d.wrap(sel.Nodes[0])
}

func (d *Document) QuerySelectorAll(selector string) []*Element {
	sel := goquery.NewDocumentFromNode(d.root).Find(selector)
	out := make([]*Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// CreateElement makes a detached element.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	return d.wrap(&html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
}

// withValues writes live form values into the tree for the duration of fn,
// then puts the markup defaults back, so rendering never changes what
// Reset restores.
func (d *Document) withValues(fn func() error) error {
	type saved struct {
		n     *html.Node
		attrs []html.Attribute
		kids  []*html.Node
	}
	restore := make([]saved, 0, len(d.values))
	for n, v := range d.values {
		sv := saved{n: n}
		switch n.DataAtom {
		case atom.Textarea:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				sv.kids = append(sv.kids, c)
			}
			setText(n, v)
		default:
			sv.attrs = append([]html.Attribute(nil), n.Attr...)
			setAttr(n, "value", v)
		}
		restore = append(restore, sv)
	}
	defer func() {
		for _, sv := range restore {
			if sv.n.DataAtom == atom.Textarea {
				removeChildren(sv.n)
				for _, c := range sv.kids {
					sv.n.AppendChild(c)
				}
				continue
			}
			sv.n.Attr = sv.attrs
		}
	}()
	return fn()
}

// Render writes the document as HTML, including current form values.  The
// tree is left as it was.  Callers must hold the document lock, e.g. by
// rendering inside Update.
func (d *Document) Render(w io.Writer) error {
	return d.withValues(func() error {
		return html.Render(w, d.root)
	})
}

// String renders the document, taking the lock itself.
func (d *Document) String() string {
	var buf bytes.Buffer
	var err error
	d.Update(func() { err = d.Render(&buf) })
	if err != nil {
		return fmt.Sprintf("<!-- can't render: %v -->", err)
	}
	return buf.String()
}
