package router

import (
	"context"
	"errors"
	"html/template"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/vango-dev/testrouter/internal/errors"
)

func renderAt(t *testing.T, routes []*Object, path string) string {
	t.Helper()
	ctx := context.Background()
	r := newMemory(t, routes, MemoryOptions{InitialEntries: []string{path}})
	require.NoError(t, r.Initialize(ctx))
	html, err := r.Render(ctx)
	require.NoError(t, err)
	return html
}

func TestRender_Outlets(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "<main><home></home></main>"},
		{"/products", "<main><section><ul></ul></section></main>"},
		{"/products/42", "<main><section>product 42</section></main>"},
		{"/about", "<main><aside><about></about></aside></main>"},
		{"/files/a/b", "<main>a/b</main>"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, renderAt(t, shopTree(), tt.path))
		})
	}
}

func TestRender_RouteWithoutComponentPassesOutlet(t *testing.T) {
	routes := []*Object{
		NewRoute(Route{ID: "root", Path: "/"},
			NewRoute(Route{ID: "leaf", Path: "leaf", Component: text("b")}),
		),
	}
	assert.Equal(t, "<b></b>", renderAt(t, routes, "/leaf"))
}

func TestRender_LoaderErrorRendersBoundary(t *testing.T) {
	routes := []*Object{
		NewRoute(Route{ID: "root", Path: "/", Component: text("main")},
			NewRoute(Route{ID: "section", Path: "section", Component: text("section"), ErrorBoundary: boundary},
				NewRoute(Route{ID: "leaf", Path: "leaf", Component: text("leaf"), Loader: failing(errors.New("boom"))}),
			),
		),
	}
	assert.Equal(t, `<main><p class="boundary">boom</p></main>`, renderAt(t, routes, "/section/leaf"))
}

func TestRender_DefaultErrorElement(t *testing.T) {
	html := renderAt(t, shopTree(), "/nowhere")
	assert.Equal(t, "<h2>Unexpected Application Error!</h2><h3>404 Not Found</h3>", html)
}

func TestRender_HydrateFallback(t *testing.T) {
	fallback := func(*RenderContext) (template.HTML, error) { return "<p>loading</p>", nil }
	routes := []*Object{
		NewRoute(Route{ID: "root", Path: "/", Component: text("main"), Loader: value("x"), HydrateFallback: fallback},
			NewRoute(Route{ID: "leaf", Path: "leaf", Component: text("leaf")}),
		),
	}
	r := newMemory(t, routes, MemoryOptions{InitialEntries: []string{"/leaf"}})
	require.False(t, r.State().Initialized)

	html, err := r.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<p>loading</p>", html)

	require.NoError(t, r.Initialize(context.Background()))
	html, err = r.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<main><leaf></leaf></main>", html)
}

func TestRender_ComponentErrorCaughtAbove(t *testing.T) {
	broken := func(*RenderContext) (template.HTML, error) { return "", errors.New("render failed") }
	routes := []*Object{
		NewRoute(Route{ID: "root", Path: "/", Component: text("main")},
			NewRoute(Route{ID: "section", Path: "section", Component: text("section"), ErrorBoundary: boundary},
				NewRoute(Route{ID: "leaf", Path: "leaf", Component: broken}),
			),
		),
	}
	assert.Equal(t, `<main><p class="boundary">render failed</p></main>`, renderAt(t, routes, "/section/leaf"))
}

func TestRender_ComponentErrorWithoutBoundary(t *testing.T) {
	broken := func(*RenderContext) (template.HTML, error) { return "", errors.New("render failed") }
	routes := []*Object{NewRoute(Route{ID: "root", Path: "/", Component: broken})}

	r := newMemory(t, routes, MemoryOptions{})
	_, err := r.Render(context.Background())
	require.Error(t, err)
	assert.Equal(t, "E132", errs.Code(err))
	assert.ErrorContains(t, err, "render failed")
}

func TestRender_ContextAccessors(t *testing.T) {
	var rc *RenderContext
	capture := func(c *RenderContext) (template.HTML, error) {
		rc = c
		return "", nil
	}
	routes := []*Object{
		NewRoute(Route{ID: "root", Path: "/", Loader: value("shell"), Component: text("main")},
			NewRoute(Route{ID: "item", Path: "items/:id", Component: capture,
				Action: func(context.Context, Args) (any, error) { return "done", nil }}),
		),
	}
	ctx := context.Background()
	r := newMemory(t, routes, MemoryOptions{})
	require.NoError(t, r.Submit(ctx, "/items/9?tab=a", "POST", url.Values{}))
	_, err := r.Render(ctx)
	require.NoError(t, err)

	require.NotNil(t, rc)
	assert.Equal(t, ctx, rc.Context())
	assert.Equal(t, "item", rc.RouteID())
	assert.Equal(t, "9", rc.Params().Get("id"))
	assert.Nil(t, rc.LoaderData())
	assert.Equal(t, "done", rc.ActionData())
	assert.Equal(t, "shell", rc.RouteLoaderData("root"))
	assert.Equal(t, "?tab=a", rc.Location().Search)
	assert.Len(t, rc.Matches(), 2)
	assert.Nil(t, rc.Error())
	assert.Empty(t, rc.Outlet())
}

func TestRender_EmptyState(t *testing.T) {
	html, err := Render(context.Background(), RouterState{})
	require.NoError(t, err)
	assert.Empty(t, html)
}
