package vtest

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// compound is one simple selector sequence such as a.btn[href].
type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrSel
}

type attrSel struct {
	name  string
	value string
	any   bool
}

// selector is a chain of compounds joined by combinators, stored right to
// left: parts[0] is the subject.
type selector struct {
	parts []compound
	child []bool // child[i]: parts[i] is a direct child of parts[i+1]
}

func parseSelector(s string) (*selector, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ">", " > "))
	if len(fields) == 0 {
		return nil, fmt.Errorf("vtest: empty selector")
	}

	var parts []compound
	var child []bool
	pendingChild := false
	for i, f := range fields {
		if f == ">" {
			if i == 0 || i == len(fields)-1 || pendingChild {
				return nil, fmt.Errorf("vtest: invalid selector %q", s)
			}
			pendingChild = true
			continue
		}
		c, err := parseCompound(f)
		if err != nil {
			return nil, fmt.Errorf("vtest: invalid selector %q: %w", s, err)
		}
		if len(parts) > 0 {
			child = append(child, pendingChild)
		}
		parts = append(parts, c)
		pendingChild = false
	}

	// Reverse so the subject comes first.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	for i, j := 0, len(child)-1; i < j; i, j = i+1, j-1 {
		child[i], child[j] = child[j], child[i]
	}
	return &selector{parts: parts, child: child}, nil
}

func parseCompound(s string) (compound, error) {
	var c compound
	i := 0
	name := func() string {
		start := i
		for i < len(s) && isNameByte(s[i]) {
			i++
		}
		return s[start:i]
	}

	c.tag = strings.ToLower(name())
	if c.tag == "*" {
		c.tag = ""
	}
	for i < len(s) {
		switch s[i] {
		case '#':
			i++
			c.id = name()
			if c.id == "" {
				return c, fmt.Errorf("empty id")
			}
		case '.':
			i++
			class := name()
			if class == "" {
				return c, fmt.Errorf("empty class")
			}
			c.classes = append(c.classes, class)
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return c, fmt.Errorf("unterminated attribute")
			}
			body := s[i+1 : i+end]
			i += end + 1
			a := attrSel{any: true, name: body}
			if k, v, ok := strings.Cut(body, "="); ok {
				a = attrSel{name: k, value: strings.Trim(v, `"'`)}
			}
			if a.name == "" {
				return c, fmt.Errorf("empty attribute name")
			}
			c.attrs = append(c.attrs, a)
		default:
			return c, fmt.Errorf("unexpected %q", s[i])
		}
	}
	return c, nil
}

func (c compound) match(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if c.tag != "" && n.Data != c.tag {
		return false
	}
	if c.id != "" {
		if v, _ := attr(n, "id"); v != c.id {
			return false
		}
	}
	if len(c.classes) > 0 {
		v, _ := attr(n, "class")
		have := strings.Fields(v)
		for _, want := range c.classes {
			if !contains(have, want) {
				return false
			}
		}
	}
	for _, a := range c.attrs {
		v, ok := attr(n, a.name)
		if !ok || (!a.any && v != a.value) {
			return false
		}
	}
	return true
}

func (s *selector) match(n *html.Node) bool {
	return s.matchFrom(0, n)
}

func (s *selector) matchFrom(i int, n *html.Node) bool {
	if !s.parts[i].match(n) {
		return false
	}
	if i == len(s.parts)-1 {
		return true
	}
	if s.child[i] {
		return s.matchFrom(i+1, n.Parent)
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if s.matchFrom(i+1, p) {
			return true
		}
	}
	return false
}

func isNameByte(b byte) bool {
	return b == '-' || b == '_' || b == '*' ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
