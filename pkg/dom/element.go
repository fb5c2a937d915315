package dom

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Element is a handle to a node of a Document. Methods lock the owning document.
type Element struct {
	doc  *Document
	node *html.Node
}

func (e *Element) sel() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.node).Selection
}

func (e *Element) Document() *Document {
	return e.doc
}

// Same reports whether both handles point at the same node.
func (e *Element) Same(other *Element) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.node == other.node
}

// TagName is the lower-cased element name.
func (e *Element) TagName() string {
	return strings.ToLower(e.node.Data)
}

func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

func (e *Element) Attr(name string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.sel().Attr(name)
}

func (e *Element) SetAttr(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.sel().SetAttr(name, value)
}

func (e *Element) RemoveAttr(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.sel().RemoveAttr(name)
}

func (e *Element) HasClass(class string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.sel().HasClass(class)
}

func (e *Element) AddClass(class string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.sel().AddClass(class)
}

func (e *Element) RemoveClass(class string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.sel().RemoveClass(class)
}

// Matches reports whether the element itself matches selector.
func (e *Element) Matches(selector string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.sel().Is(selector)
}

// Closest returns the nearest ancestor-or-self matching selector.
func (e *Element) Closest(selector string) *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	found := e.sel().Closest(selector)
	if found.Length() == 0 {
		return nil
	}
	return &Element{doc: e.doc, node: found.Get(0)}
}

func (e *Element) QuerySelector(selector string) *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	found := e.sel().Find(selector).First()
	if found.Length() == 0 {
		return nil
	}
	return &Element{doc: e.doc, node: found.Get(0)}
}

func (e *Element) QuerySelectorAll(selector string) []*Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.doc.wrap(e.sel().Find(selector))
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.sel().Text()
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(text string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func (e *Element) InnerHTML() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	out, err := e.sel().Html()
	if err != nil {
		return ""
	}
	return out
}

func (e *Element) OuterHTML() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	out, err := goquery.OuterHtml(e.sel())
	if err != nil {
		return ""
	}
	return out
}

func (e *Element) SetInnerHTML(markup string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.sel().SetHtml(markup)
}

// AppendHTML parses markup in the element's context and appends the result,
// returning the first appended element (nil if markup held no element).
func (e *Element) AppendHTML(markup string) *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	last := e.node.LastChild
	e.sel().AppendHtml(markup)

	start := e.node.FirstChild
	if last != nil {
		start = last.NextSibling
	}
	for c := start; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return &Element{doc: e.doc, node: c}
		}
	}
	return nil
}

// Remove detaches the element. Removing an already detached element is a no-op.
func (e *Element) Remove() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

// IsConnected reports whether the element is still part of its document's tree.
func (e *Element) IsConnected() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	root := e.doc.root.Get(0)
	for n := e.node; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

func (e *Element) Disabled() bool {
	_, ok := e.Attr("disabled")
	return ok
}

func (e *Element) SetDisabled(disabled bool) {
	if disabled {
		e.SetAttr("disabled", "")
		return
	}
	e.RemoveAttr("disabled")
}

// Style returns one inline style property.
func (e *Element) Style(property string) string {
	raw, _ := e.Attr("style")
	return parseStyle(raw)[strings.ToLower(property)]
}

// SetStyle sets one inline style property; an empty value removes it.
func (e *Element) SetStyle(property, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	s := e.sel()
	raw, _ := s.Attr("style")
	props := parseStyle(raw)
	property = strings.ToLower(strings.TrimSpace(property))
	if value == "" {
		delete(props, property)
	} else {
		props[property] = value
	}
	if len(props) == 0 {
		s.RemoveAttr("style")
		return
	}
	s.SetAttr("style", formatStyle(props))
}

func parseStyle(raw string) map[string]string {
	props := map[string]string{}
	for _, decl := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		props[name] = strings.TrimSpace(value)
	}
	return props
}

func formatStyle(props map[string]string) string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(props[name])
		b.WriteString(";")
	}
	return b.String()
}
