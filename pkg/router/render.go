package router

import (
	"context"
	"html/template"

	errs "github.com/vango-dev/testrouter/internal/errors"
)

// RenderContext is passed to route components during rendering.
type RenderContext struct {
	ctx     context.Context
	state   *RouterState
	matches []Match
	index   int
	outlet  template.HTML
	err     error
}

// Context returns the render's context.
func (rc *RenderContext) Context() context.Context {
	return rc.ctx
}

// RouteID returns the ID of the route being rendered.
func (rc *RenderContext) RouteID() string {
	return rc.matches[rc.index].Route.ID
}

// Params returns the URL params of the matched branch.
func (rc *RenderContext) Params() Params {
	return rc.matches[rc.index].Params
}

// LoaderData returns this route's loader result.
func (rc *RenderContext) LoaderData() any {
	return rc.state.LoaderData[rc.RouteID()]
}

// ActionData returns this route's action result, if it was submitted to.
func (rc *RenderContext) ActionData() any {
	return rc.state.ActionData[rc.RouteID()]
}

// RouteLoaderData returns the loader result of any route by ID.
func (rc *RenderContext) RouteLoaderData(id string) any {
	return rc.state.LoaderData[id]
}

// Location returns the current location.
func (rc *RenderContext) Location() Location {
	return rc.state.Location
}

// Matches returns the rendered branch, root first.
func (rc *RenderContext) Matches() []Match {
	return rc.matches
}

// Error returns the error an error boundary is rendering.
func (rc *RenderContext) Error() error {
	return rc.err
}

// Outlet returns the rendered child route.
func (rc *RenderContext) Outlet() template.HTML {
	return rc.outlet
}

// Render renders a router state leaf to root. A route holding an error
// renders its boundary and nothing below it; a component that fails is
// replaced by the nearest boundary at or above it.
func Render(ctx context.Context, state RouterState) (string, error) {
	matches := state.Matches
	if len(matches) == 0 {
		return "", nil
	}

	if len(state.Errors) > 0 {
		for i, m := range matches {
			if _, ok := state.Errors[m.Route.ID]; ok {
				matches = matches[:i+1]
				break
			}
		}
	}

	fallback := -1
	if !state.Initialized {
		for i, m := range matches {
			if m.Route.HydrateFallback == nil || m.Route.Loader == nil {
				continue
			}
			if _, loaded := state.LoaderData[m.Route.ID]; !loaded {
				fallback = i
				matches = matches[:i+1]
				break
			}
		}
	}

	var outlet template.HTML
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		rc := &RenderContext{ctx: ctx, state: &state, matches: matches, index: i, outlet: outlet}

		var out template.HTML
		var err error
		if routeErr, ok := state.Errors[m.Route.ID]; ok {
			rc.err = routeErr
			out, err = renderBoundary(rc, m.Route)
		} else if i == fallback {
			out, err = m.Route.HydrateFallback(rc)
		} else if m.Route.Component != nil {
			out, err = m.Route.Component(rc)
		} else {
			out = outlet
		}

		if err != nil {
			j := boundaryAtOrAbove(matches, i)
			if j < 0 {
				return "", errs.New("E132").WithDetailf("route %q", m.Route.ID).Wrap(err)
			}
			brc := &RenderContext{ctx: ctx, state: &state, matches: matches, index: j, err: err}
			out, err = matches[j].Route.ErrorBoundary(brc)
			if err != nil {
				return "", errs.New("E132").WithDetailf("error boundary of route %q", matches[j].Route.ID).Wrap(err)
			}
			i = j
		}
		outlet = out
	}

	return string(outlet), nil
}

func renderBoundary(rc *RenderContext, r *Object) (template.HTML, error) {
	if r.ErrorBoundary != nil {
		return r.ErrorBoundary(rc)
	}
	return defaultErrorElement(rc.err), nil
}

func boundaryAtOrAbove(matches []Match, i int) int {
	for j := i; j >= 0; j-- {
		if matches[j].Route.ErrorBoundary != nil {
			return j
		}
	}
	return -1
}

// defaultErrorElement renders an error no route boundary handles.
func defaultErrorElement(err error) template.HTML {
	msg := err.Error()
	if er, ok := IsErrorResponse(err); ok {
		msg = er.Error()
	}
	return template.HTML("<h2>Unexpected Application Error!</h2><h3>" + template.HTMLEscapeString(msg) + "</h3>")
}
