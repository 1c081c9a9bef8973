package router

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// text renders a fixed tag around the outlet.
func text(tag string) Component {
	return func(rc *RenderContext) (template.HTML, error) {
		return template.HTML("<"+tag+">") + rc.Outlet() + template.HTML("</"+tag+">"), nil
	}
}

// dataView renders the route's loader data.
func dataView(rc *RenderContext) (template.HTML, error) {
	return template.HTML(template.HTMLEscapeString(fmt.Sprint(rc.LoaderData()))), nil
}

func value(v any) LoaderFunc {
	return func(context.Context, Args) (any, error) { return v, nil }
}

func failing(err error) LoaderFunc {
	return func(context.Context, Args) (any, error) { return nil, err }
}

func boundary(rc *RenderContext) (template.HTML, error) {
	return template.HTML("<p class=\"boundary\">" + template.HTMLEscapeString(rc.Error().Error()) + "</p>"), nil
}

// shopTree is the fixture used across router tests:
//
//	/ (root, layout, loader)
//	├── index
//	├── products (loader)
//	│   ├── index
//	│   └── :id (loader, action)
//	├── (pathless layout)
//	│   └── about
//	└── files/*
func shopTree() []*Object {
	return []*Object{
		NewRoute(Route{ID: "root", Path: "/", Component: text("main"), Loader: value("shell")},
			NewIndex(Route{ID: "routes/home", Component: text("home")}),
			NewRoute(Route{ID: "routes/products", Path: "products", Component: text("section"), Loader: value("list")},
				NewIndex(Route{ID: "routes/products.index", Component: text("ul")}),
				NewRoute(Route{
					ID:        "routes/products.$id",
					Path:      ":id",
					Component: dataView,
					Loader: func(_ context.Context, a Args) (any, error) {
						return "product " + a.Params["id"], nil
					},
					Action: func(_ context.Context, a Args) (any, error) {
						return "saved " + a.Request.FormValue("name"), nil
					},
				}),
			),
			NewRoute(Route{ID: "routes/_marketing", Component: text("aside")},
				NewRoute(Route{ID: "routes/about", Path: "about", Component: text("about")}),
			),
			NewRoute(Route{ID: "routes/files", Path: "files/*path", Component: dataView,
				Loader: func(_ context.Context, a Args) (any, error) { return a.Params["path"], nil }}),
		),
	}
}

func mustHandler(t *testing.T, routes []*Object) *StaticHandler {
	t.Helper()
	h, err := NewStaticHandler(routes)
	require.NoError(t, err)
	return h
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

func ids(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Route.ID
	}
	return out
}
