// Package dom is an in-memory HTML document with the small element API the
// navigation runtime needs. All access goes through one lock per document, so
// the tree behaves like a single-threaded page even when timers and submissions
// run on separate goroutines.
package dom

import (
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

type Document struct {
	mu   sync.Mutex
	root *goquery.Document
}

func Parse(r io.Reader) (*Document, error) {
	root, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// HTML renders the whole document.
func (d *Document) HTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out, err := goquery.OuterHtml(d.root.Selection)
	if err != nil {
		return ""
	}
	return out
}

// Title returns the text of the <title> element.
func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.TrimSpace(d.root.Find("title").First().Text())
}

// QuerySelector returns the first element matching selector, or nil.
func (d *Document) QuerySelector(selector string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.root.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return &Element{doc: d, node: sel.Get(0)}
}

func (d *Document) QuerySelectorAll(selector string) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wrap(d.root.Find(selector))
}

func (d *Document) GetElementByID(id string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := findByID(d.root.Get(0), id)
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

func (d *Document) Body() *Element {
	return d.QuerySelector("body")
}

// Replace swaps the whole tree for other's. Elements obtained before the call
// become disconnected.
func (d *Document) Replace(other *Document) {
	other.mu.Lock()
	root := other.root
	other.mu.Unlock()

	d.mu.Lock()
	d.root = root
	d.mu.Unlock()
}

func (d *Document) wrap(sel *goquery.Selection) []*Element {
	out := make([]*Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, &Element{doc: d, node: n})
	}
	return out
}

// findByID walks the subtree rooted at n. ids are matched literally, so values
// that are not valid CSS identifiers still resolve.
func findByID(n *html.Node, id string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Namespace == "" && a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}
