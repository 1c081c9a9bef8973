package router

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Match is one route of a matched branch, root first.
type Match struct {
	Route    *Object
	Params   Params
	Pathname string
	Pattern  string
}

type branch struct {
	pattern string
	splat   string
	routes  []*Object
}

// matcher resolves pathnames to route branches through a chi mux.
type matcher struct {
	mux      *chi.Mux
	branches map[string]*branch
	order    []*branch
}

func newMatcher(routes []*Object) (m *matcher, err error) {
	m = &matcher{
		mux:      chi.NewMux(),
		branches: make(map[string]*branch),
	}

	var flat []*branch
	flatten(routes, "", nil, &flat)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("registering route patterns: %v", r)
		}
	}()

	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, b := range flat {
		// First branch in source order wins a duplicate pattern.
		if _, dup := m.branches[b.pattern]; dup {
			continue
		}
		m.branches[b.pattern] = b
		m.order = append(m.order, b)
		m.mux.Handle(b.pattern, noop)
	}
	return m, nil
}

// flatten appends one branch per matchable route. Children are flattened
// before their parent so an index child claims the parent's path.
func flatten(routes []*Object, parentPath string, parents []*Object, out *[]*branch) {
	for _, r := range routes {
		full := parentPath
		if !r.index {
			full = joinPaths(parentPath, r.Path)
		}

		chain := make([]*Object, 0, len(parents)+1)
		chain = append(chain, parents...)
		chain = append(chain, r)

		if len(r.children) > 0 {
			flatten(r.children, full, chain, out)
		}

		// Pathless layouts only match through their children.
		if !r.index && r.Path == "" {
			continue
		}

		pattern, splat := chiPattern(full)
		*out = append(*out, &branch{pattern: pattern, splat: splat, routes: chain})
	}
}

// match resolves an escaped pathname to its branch. Params are decoded.
func (m *matcher) match(pathname string) ([]Match, bool) {
	p := normalizePathname(pathname)

	rctx := chi.NewRouteContext()
	if !m.mux.Match(rctx, http.MethodGet, p) || len(rctx.RoutePatterns) == 0 {
		return nil, false
	}

	pattern := rctx.RoutePatterns[len(rctx.RoutePatterns)-1]
	b, ok := m.branches[pattern]
	if !ok {
		return nil, false
	}

	params := make(Params, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = unescapeParam(rctx.URLParams.Values[i])
	}
	if b.splat != "" {
		params[b.splat] = params["*"]
	}

	matches := make([]Match, len(b.routes))
	for i, r := range b.routes {
		matches[i] = Match{Route: r, Params: params, Pathname: p, Pattern: pattern}
	}
	return matches, true
}

// unescapeParam decodes a value matched against an escaped pathname. Values
// with malformed escapes are kept as matched.
func unescapeParam(v string) string {
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// patterns returns the registered patterns in registration order.
func (m *matcher) patterns() []string {
	out := make([]string, len(m.order))
	for i, b := range m.order {
		out[i] = b.pattern
	}
	return out
}

// joinPaths joins a child path onto its parent. Absolute child paths
// stand alone.
func joinPaths(parent, child string) string {
	if strings.HasPrefix(child, "/") {
		return normalizePathname(child)
	}
	if child == "" {
		return normalizePathname(parent)
	}
	return normalizePathname(strings.TrimRight(parent, "/") + "/" + child)
}

// normalizePathname ensures a leading slash, collapses duplicate slashes
// and drops a trailing slash.
func normalizePathname(p string) string {
	segs := strings.Split(p, "/")
	kept := segs[:0]
	for _, s := range segs {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return "/" + strings.Join(kept, "/")
}

// chiPattern converts a route path into a chi pattern:
// ":id" → "{id}", ":id?" → "{id}", "*" and "*name" → "*".
func chiPattern(p string) (pattern, splat string) {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return "/", ""
	}

	segs := strings.Split(trimmed, "/")
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		if strings.HasPrefix(s, "*") {
			splat = s[1:]
			out = append(out, "*")
			break
		}
		if strings.HasPrefix(s, ":") {
			s = "{" + strings.TrimSuffix(s[1:], "?") + "}"
		}
		out = append(out, s)
	}
	return "/" + strings.Join(out, "/"), splat
}
