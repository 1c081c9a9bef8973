package vtest

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Screen is a parsed render result.
type Screen struct {
	src  string
	root *html.Node
}

// Parse parses rendered HTML. Fragments are parsed in a <body> context.
func Parse(src string) (*Screen, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return nil, fmt.Errorf("vtest: parse html: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Screen{src: src, root: root}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) *Screen {
	s, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return s
}

// HTML returns the source the screen was parsed from.
func (s *Screen) HTML() string {
	return s.src
}

// Text returns the whitespace-normalized text content of the screen.
func (s *Screen) Text() string {
	return textOf(s.root)
}

// Root returns the top-level elements.
func (s *Screen) Root() []*Element {
	var out []*Element
	for c := s.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{node: c})
		}
	}
	return out
}

// QueryAll returns every element matching selector in document order.
// An invalid selector matches nothing.
func (s *Screen) QueryAll(selector string) []*Element {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil
	}
	return s.collect(sel.match)
}

// Query returns the first element matching selector, or nil.
func (s *Screen) Query(selector string) *Element {
	return first(s.QueryAll(selector))
}

// Get returns the single element matching selector.
func (s *Screen) Get(selector string) (*Element, error) {
	if _, err := parseSelector(selector); err != nil {
		return nil, err
	}
	return single("selector "+selector, s.QueryAll(selector))
}

// QueryAllByTag returns every element with the given tag name.
func (s *Screen) QueryAllByTag(tag string) []*Element {
	tag = strings.ToLower(tag)
	return s.collect(func(n *html.Node) bool { return n.Data == tag })
}

// QueryByTag returns the first element with the given tag name, or nil.
func (s *Screen) QueryByTag(tag string) *Element {
	return first(s.QueryAllByTag(tag))
}

// GetByTag returns the single element with the given tag name.
func (s *Screen) GetByTag(tag string) (*Element, error) {
	return single("tag "+tag, s.QueryAllByTag(tag))
}

// QueryAllByText returns the innermost elements whose normalized text
// equals text.
func (s *Screen) QueryAllByText(text string) []*Element {
	text = normalize(text)
	return s.collect(func(n *html.Node) bool {
		if textOf(n) != text {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && textOf(c) == text {
				return false
			}
		}
		return true
	})
}

// QueryByText returns the first element with the given text, or nil.
func (s *Screen) QueryByText(text string) *Element {
	return first(s.QueryAllByText(text))
}

// GetByText returns the single element with the given text.
func (s *Screen) GetByText(text string) (*Element, error) {
	return single(fmt.Sprintf("text %q", text), s.QueryAllByText(text))
}

// QueryAllByAttr returns every element whose attribute name equals value.
func (s *Screen) QueryAllByAttr(name, value string) []*Element {
	return s.collect(func(n *html.Node) bool {
		v, ok := attr(n, name)
		return ok && v == value
	})
}

// GetByAttr returns the single element whose attribute name equals value.
func (s *Screen) GetByAttr(name, value string) (*Element, error) {
	return single(fmt.Sprintf("%s=%q", name, value), s.QueryAllByAttr(name, value))
}

// GetByTestID returns the single element with the given data-testid.
func (s *Screen) GetByTestID(id string) (*Element, error) {
	return s.GetByAttr("data-testid", id)
}

func (s *Screen) collect(match func(*html.Node) bool) []*Element {
	var out []*Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && match(c) {
				out = append(out, &Element{node: c})
			}
			walk(c)
		}
	}
	walk(s.root)
	return out
}

// Element is an element of a Screen.
type Element struct {
	node *html.Node
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	return attr(e.node, name)
}

// Text returns the element's whitespace-normalized text content.
func (e *Element) Text() string {
	return textOf(e.node)
}

// HTML renders the element back to HTML.
func (e *Element) HTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return ""
	}
	return buf.String()
}

// Children returns the element's child elements.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{node: c})
		}
	}
	return out
}

func (e *Element) String() string {
	return e.HTML()
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return normalize(b.String())
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func first(els []*Element) *Element {
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

func single(what string, els []*Element) (*Element, error) {
	switch len(els) {
	case 0:
		return nil, fmt.Errorf("vtest: no element found with %s", what)
	case 1:
		return els[0], nil
	}
	return nil, fmt.Errorf("vtest: found %d elements with %s", len(els), what)
}
