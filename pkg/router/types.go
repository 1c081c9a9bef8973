package router

import (
	"context"
	"html/template"
	"net/http"
)

// Args are the arguments passed to loaders and actions.
type Args struct {
	// Request is the synthetic request being resolved.
	Request *http.Request

	// Params are the URL params of the matched branch.
	Params Params

	// Context is the ambient load context supplied by the caller.
	Context any

	// RouteID identifies the route whose handler is being called.
	RouteID string
}

// LoaderFunc fetches data for a route before it renders.
type LoaderFunc func(ctx context.Context, args Args) (any, error)

// ActionFunc performs a mutation for a route submission.
type ActionFunc func(ctx context.Context, args Args) (any, error)

// Component renders a route. Layout components embed rc.Outlet().
type Component func(rc *RenderContext) (template.HTML, error)

// Module is the set of exports a route implementation provides.
// A nil field means the module does not export it.
type Module struct {
	Component       Component
	Loader          LoaderFunc
	Action          ActionFunc
	ErrorBoundary   Component
	HydrateFallback Component
}

// Route holds the fields shared by index and non-index route objects.
type Route struct {
	// ID is the unique route identifier (e.g. "routes/products").
	ID string

	// Path is the path pattern relative to the parent route.
	// Empty for index routes and pathless layouts.
	Path string

	Component       Component
	Loader          LoaderFunc
	Action          ActionFunc
	ErrorBoundary   Component
	HydrateFallback Component
}

// Object is a materialized route node.
type Object struct {
	Route

	index    bool
	children []*Object
}

// NewIndex creates an index route. Index routes never carry children.
func NewIndex(r Route) *Object {
	r.Path = ""
	return &Object{Route: r, index: true}
}

// NewRoute creates a non-index route with its children in match order.
// The children list is always non-nil.
func NewRoute(r Route, children ...*Object) *Object {
	c := make([]*Object, 0, len(children))
	c = append(c, children...)
	return &Object{Route: r, children: c}
}

// Index reports whether this is an index route.
func (o *Object) Index() bool {
	return o.index
}

// Children returns the child routes. It is nil for index routes and
// non-nil (possibly empty) otherwise.
func (o *Object) Children() []*Object {
	return o.children
}

// Walk visits o and its descendants depth-first in source order.
func (o *Object) Walk(fn func(o *Object, depth int)) {
	o.walk(fn, 0)
}

func (o *Object) walk(fn func(o *Object, depth int), depth int) {
	fn(o, depth)
	for _, c := range o.children {
		c.walk(fn, depth+1)
	}
}
