package router

import (
	"context"
	"errors"
	"net/http"
	"strings"

	errs "github.com/vango-dev/testrouter/internal/errors"
)

// HydrationContext is the outcome of one static resolution: the data and
// errors each matched route produced. It seeds a MemoryRouter once and is
// not mutated afterwards.
type HydrationContext struct {
	Location   Location
	Matches    []Match
	StatusCode int

	// LoaderData maps route ID to loader result.
	LoaderData map[string]any

	// ActionData maps route ID to action result (mutations only).
	ActionData map[string]any

	// Errors maps the ID of the route whose boundary handles an error
	// to that error. Nil when nothing failed.
	Errors map[string]error
}

// QueryResult holds either a hydration context or a redirect.
type QueryResult struct {
	Context  *HydrationContext
	Redirect *Response
}

// IsRedirect reports whether resolution ended in a redirect.
func (q *QueryResult) IsRedirect() bool {
	return q != nil && q.Redirect != nil
}

// QueryOption configures a single Query call.
type QueryOption func(*queryOptions)

type queryOptions struct {
	requestContext any
}

// WithRequestContext sets the ambient context passed to every loader and
// action as Args.Context.
func WithRequestContext(v any) QueryOption {
	return func(o *queryOptions) {
		o.requestContext = v
	}
}

// StaticHandler resolves requests against a route tree without rendering.
type StaticHandler struct {
	routes  []*Object
	matcher *matcher
}

// NewStaticHandler creates a static handler for routes.
func NewStaticHandler(routes []*Object) (*StaticHandler, error) {
	m, err := newMatcher(routes)
	if err != nil {
		return nil, errs.New("E120").Wrap(err)
	}
	return &StaticHandler{routes: routes, matcher: m}, nil
}

// Routes returns the route tree.
func (h *StaticHandler) Routes() []*Object {
	return h.routes
}

// Patterns returns the flattened branch patterns in precedence order.
func (h *StaticHandler) Patterns() []string {
	return h.matcher.patterns()
}

// Match returns the matched branch for a pathname, root first.
func (h *StaticHandler) Match(pathname string) ([]Match, bool) {
	return h.matcher.match(pathname)
}

// Query runs the action (for POST, PUT, PATCH and DELETE) and the loaders
// of the branch matching req, in branch order.
func (h *StaticHandler) Query(ctx context.Context, req *http.Request, opts ...QueryOption) (*QueryResult, error) {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}

	loc := locationFromURL(req.URL)
	hc := &HydrationContext{
		Location:   loc,
		StatusCode: http.StatusOK,
		LoaderData: make(map[string]any),
		ActionData: make(map[string]any),
	}

	matches, ok := h.matcher.match(loc.Pathname)
	if !ok {
		return &QueryResult{Context: h.shortCircuit(hc, http.StatusNotFound)}, nil
	}
	hc.Matches = matches

	loaderMatches := matches
	switch {
	case isMutation(req.Method):
		ti := targetIndex(matches, loc)
		target := matches[ti]
		if target.Route.Action == nil {
			bi := boundaryIndex(matches, ti)
			hc.setError(matches[bi].Route.ID, newErrorResponse(http.StatusMethodNotAllowed, nil))
			loaderMatches = matches[:bi]
			break
		}

		v, err := target.Route.Action(ctx, h.args(req, target, o))
		if r, ok := redirectOf(v, err); ok {
			return &QueryResult{Redirect: r}, nil
		}
		if err != nil {
			bi := boundaryIndex(matches, ti)
			hc.setError(matches[bi].Route.ID, normalizeError(err))
			loaderMatches = matches[:bi]
			break
		}
		hc.ActionData[target.Route.ID] = v

	case req.Method != http.MethodGet && req.Method != http.MethodHead:
		return &QueryResult{Context: h.shortCircuit(hc, http.StatusMethodNotAllowed)}, nil
	}

	for i, m := range loaderMatches {
		if m.Route.Loader == nil {
			continue
		}
		v, err := m.Route.Loader(ctx, h.args(req, m, o))
		if r, ok := redirectOf(v, err); ok {
			return &QueryResult{Redirect: r}, nil
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			hc.setError(matches[boundaryIndex(matches, i)].Route.ID, normalizeError(err))
			continue
		}
		hc.LoaderData[m.Route.ID] = v
	}

	return &QueryResult{Context: hc}, nil
}

func (h *StaticHandler) args(req *http.Request, m Match, o queryOptions) Args {
	return Args{
		Request: req,
		Params:  m.Params.Clone(),
		Context: o.requestContext,
		RouteID: m.Route.ID,
	}
}

// shortCircuit records a status error against the root route only.
func (h *StaticHandler) shortCircuit(hc *HydrationContext, status int) *HydrationContext {
	if len(h.routes) == 0 {
		hc.StatusCode = status
		return hc
	}
	root := h.routes[0]
	hc.Matches = []Match{{Route: root, Params: Params{}, Pathname: hc.Location.Pathname}}
	hc.setError(root.ID, newErrorResponse(status, nil))
	return hc
}

// setError records err for routeID unless an error is already held there.
// The status code follows the first recorded error.
func (hc *HydrationContext) setError(routeID string, err error) {
	if hc.Errors == nil {
		hc.Errors = make(map[string]error)
		hc.StatusCode = statusOf(err)
	}
	if _, exists := hc.Errors[routeID]; !exists {
		hc.Errors[routeID] = err
	}
}

func isMutation(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// targetIndex picks the route a submission is addressed to: the deepest
// path-contributing match, or the index route when the URL carries a
// naked "?index".
func targetIndex(matches []Match, loc Location) int {
	last := len(matches) - 1
	if matches[last].Route.index && hasNakedIndexQuery(loc) {
		return last
	}
	for i := last; i > 0; i-- {
		r := matches[i].Route
		if !r.index && r.Path != "" {
			return i
		}
	}
	return 0
}

func hasNakedIndexQuery(loc Location) bool {
	for _, v := range loc.Query()["index"] {
		if v == "" {
			return true
		}
	}
	return false
}

// boundaryIndex returns the nearest match at or above i that declares an
// error boundary, falling back to the root.
func boundaryIndex(matches []Match, i int) int {
	for j := i; j >= 0; j-- {
		if matches[j].Route.ErrorBoundary != nil {
			return j
		}
	}
	return 0
}
