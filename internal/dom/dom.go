package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document is a parsed snapshot of a rendered page
type Document struct {
	URL  string
	root *html.Node
}

// Parse reads an HTML snapshot
func Parse(r io.Reader, url string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Document{URL: url, root: root}, nil
}

// ParseString is Parse for an in-memory snapshot
func ParseString(s, url string) (*Document, error) {
	return Parse(strings.NewReader(s), url)
}

// Root returns the document node as an Element
func (d *Document) Root() *Element {
	return &Element{node: d.root}
}

// Find returns the first element matching loc anywhere in the document
func (d *Document) Find(loc Locator) (*Element, bool) {
	return d.Root().Find(loc)
}

// FindAll returns every element matching loc in document order
func (d *Document) FindAll(loc Locator) []*Element {
	return d.Root().FindAll(loc)
}

// Has reports whether loc matches anything
func (d *Document) Has(loc Locator) bool {
	_, ok := d.Find(loc)
	return ok
}

// Element is a handle on one node of a Document
type Element struct {
	node *html.Node
}

func wrap(nodes []*html.Node) []*Element {
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &Element{node: n})
	}
	return out
}

func (e *Element) selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.node).Selection
}

// Find returns the first descendant matching loc. XPath locators are
// evaluated with e as the context node, so relative paths like
// "../following-sibling::*" work.
func (e *Element) Find(loc Locator) (*Element, bool) {
	all := e.FindAll(loc)
	if len(all) == 0 {
		return nil, false
	}
	return all[0], true
}

// FindAll returns all matches of loc below (CSS) or relative to (XPath) e
func (e *Element) FindAll(loc Locator) []*Element {
	if e == nil || e.node == nil {
		return nil
	}
	switch loc.By {
	case ByXPath:
		if loc.xpath == nil {
			return nil
		}
		return wrap(htmlquery.QuerySelectorAll(e.node, loc.xpath))
	default:
		if loc.css == nil {
			return nil
		}
		return wrap(e.selection().FindMatcher(loc.css).Nodes)
	}
}

// Children returns the element children of e, skipping text and comments
func (e *Element) Children() []*Element {
	return wrap(e.selection().Children().Nodes)
}

// Child returns the i-th element child
func (e *Element) Child(i int) (*Element, bool) {
	children := e.Children()
	if i < 0 || i >= len(children) {
		return nil, false
	}
	return children[i], true
}

// Parent returns the parent element
func (e *Element) Parent() (*Element, bool) {
	p := e.selection().Parent()
	if p.Length() == 0 {
		return nil, false
	}
	return &Element{node: p.Nodes[0]}, true
}

// Closest returns the nearest ancestor (or e itself) matching a CSS locator
func (e *Element) Closest(loc Locator) (*Element, bool) {
	if loc.css == nil {
		return nil, false
	}
	c := e.selection().ClosestMatcher(loc.css)
	if c.Length() == 0 {
		return nil, false
	}
	return &Element{node: c.Nodes[0]}, true
}

// Same reports whether both handles point at the same node
func (e *Element) Same(other *Element) bool {
	return e != nil && other != nil && e.node == other.node
}

// Attr returns the value of an attribute and whether it is present
func (e *Element) Attr(name string) (string, bool) {
	return e.selection().Attr(name)
}

// AttrOr returns the attribute value or def when absent
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// Enabled is false for form controls carrying the disabled attribute
func (e *Element) Enabled() bool {
	_, disabled := e.Attr("disabled")
	return !disabled
}

// Text returns the visible text of e with whitespace collapsed
func (e *Element) Text() string {
	return VisibleText(e.node)
}
