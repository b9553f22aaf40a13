package dom

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a handle on an element node.  Two handles on the same node are
// interchangeable; compare them with Is.
type Element struct {
	doc *Document
	n   *html.Node
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

func setText(n *html.Node, s string) {
	removeChildren(n)
	if s != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	}
}

func (e *Element) Node() *html.Node {
	return e.n
}

func (e *Element) Document() *Document {
	return e.doc
}

// Is reports whether both handles point at the same node.
func (e *Element) Is(other *Element) bool {
	return e != nil && other != nil && e.n == other.n
}

func (e *Element) Tag() string {
	return e.n.Data
}

func (e *Element) ID() string {
	return attr(e.n, "id")
}

func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

func (e *Element) SetAttr(name, value string) {
	setAttr(e.n, name, value)
}

func (e *Element) RemoveAttr(name string) {
	e.n.Attr = slices.DeleteFunc(e.n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == name
	})
}

func (e *Element) classes() []string {
	return strings.Fields(attr(e.n, "class"))
}

func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.classes(), class)
}

// SetClass adds or removes class.
func (e *Element) SetClass(class string, on bool) {
	cs := e.classes()
	has := slices.Contains(cs, class)
	switch {
	case on && !has:
		cs = append(cs, class)
	case !on && has:
		cs = slices.DeleteFunc(cs, func(c string) bool { return c == class })
	default:
		return
	}
	if len(cs) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(cs, " "))
}

// ToggleClass flips class and returns whether it is now present.
func (e *Element) ToggleClass(class string) bool {
	on := !e.HasClass(class)
	e.SetClass(class, on)
	return on
}

// Text is the concatenated text of all descendants.
func (e *Element) Text() string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(e.n)
	return b.String()
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(s string) {
	setText(e.n, s)
}

func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// SetInnerHTML parses s in the context of this element and replaces the
// children with the result.
func (e *Element) SetInnerHTML(s string) error {
	nodes, err := html.ParseFragment(strings.NewReader(s), e.n)
	if err != nil {
		return fmt.Errorf("can't parse fragment: %w", err)
	}
	removeChildren(e.n)
	for _, n := range nodes {
		e.n.AppendChild(n)
	}
	return nil
}

func (e *Element) Parent() *Element {
	if e.n.Parent == nil || e.n.Parent.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(e.n.Parent)
}

func (e *Element) NextElementSibling() *Element {
	for s := e.n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return e.doc.wrap(s)
		}
	}
	return nil
}

// After inserts other, which must be detached, right after e.
func (e *Element) After(other *Element) {
	if e.n.Parent == nil {
		return
	}
	e.n.Parent.InsertBefore(other.n, e.n.NextSibling)
}

// AppendChild appends other, which must be detached.
func (e *Element) AppendChild(other *Element) {
	e.n.AppendChild(other.n)
}

func (e *Element) selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.n).Selection
}

// Matches reports whether e matches selector.
func (e *Element) Matches(selector string) bool {
	return e.selection().Is(selector)
}

// Closest returns e or its nearest ancestor matching selector.
func (e *Element) Closest(selector string) *Element {
	sel := e.selection().Closest(selector)
	if sel.Length() == 0 {
		return nil
	}
	return e.doc.wrap(sel.Nodes[0])
}

// ElementByName returns the first descendant whose name attribute is name.
// Like GetElementByID it compares the attribute directly, so any name works.
func (e *Element) ElementByName(name string) *Element {
	if name == "" {
		return nil
	}
	return e.doc.wrap(findAttr(e.n, "name", name))
}

func (e *Element) QuerySelector(selector string) *Element {
	sel := e.selection().Find(selector)
	if sel.Length() == 0 {
		return nil
	}
	return e.doc.wrap(sel.Nodes[0])
}

func (e *Element) QuerySelectorAll(selector string) []*Element {
	sel := e.selection().Find(selector)
	out := make([]*Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, e.doc.wrap(n))
	}
	return out
}

// Value is the current value of an input or textarea.
func (e *Element) Value() string {
	if v, ok := e.doc.values[e.n]; ok {
		return v
	}
	if e.n.DataAtom == atom.Textarea {
		return e.Text()
	}
	return attr(e.n, "value")
}

func (e *Element) SetValue(v string) {
	e.doc.values[e.n] = v
}

func (e *Element) Disabled() bool {
	return e.HasAttr("disabled")
}

func (e *Element) SetDisabled(disabled bool) {
	if disabled {
		e.SetAttr("disabled", "")
	} else {
		e.RemoveAttr("disabled")
	}
}

// Reset puts the form controls under e back to their markup defaults.
func (e *Element) Reset() {
	for _, c := range e.QuerySelectorAll("input, textarea") {
		delete(e.doc.values, c.n)
	}
}

func (e *Element) String() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.n); err != nil {
		return fmt.Sprintf("<%s>", e.n.Data)
	}
	return buf.String()
}
