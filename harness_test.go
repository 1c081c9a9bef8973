package testrouter

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/vango-dev/testrouter/internal/errors"
	"github.com/vango-dev/testrouter/pkg/middleware"
	"github.com/vango-dev/testrouter/pkg/resolver"
	"github.com/vango-dev/testrouter/pkg/router"
	"github.com/vango-dev/testrouter/pkg/vtest"
)

func src(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

func shop() fstest.MapFS {
	return fstest.MapFS{
		"testrouter.config.yaml": src(`
appDirectory: app
headers:
  Accept-Language: en
  X-Tenant: acme
`),
		"app/root.go": src("package app"),
		"app/routes.json": src(`[
  {"file": "routes/home.go", "index": true},
  {"path": "products", "file": "routes/products.go", "children": [
    {"id": "product", "path": ":id", "file": "routes/product.go"}
  ]},
  {"path": "account", "file": "routes/account.go"},
  {"path": "echo", "file": "routes/echo.go"}
]`),
		"app/routes/home.go":     src("package routes"),
		"app/routes/products.go": src("package routes"),
		"app/routes/product.go":  src("package routes"),
		"app/routes/account.go":  src("package routes"),
		"app/routes/echo.go":     src("package routes"),
	}
}

func component(f func(rc *router.RenderContext) string) router.Component {
	return func(rc *router.RenderContext) (template.HTML, error) {
		return template.HTML(f(rc)), nil
	}
}

func shopModules() *resolver.MapLoader {
	return &resolver.MapLoader{Modules: map[string]*router.Module{
		"root": {
			Component: component(func(rc *router.RenderContext) string {
				return "<main>" + string(rc.Outlet()) + "</main>"
			}),
		},
		"routes/home": {
			Component: component(func(*router.RenderContext) string { return "<h1>Welcome</h1>" }),
		},
		"routes/products": {
			Loader: func(_ context.Context, args router.Args) (any, error) {
				return args.Request.URL.Query().Get("sort"), nil
			},
			Component: component(func(rc *router.RenderContext) string {
				return fmt.Sprintf(`<section data-sort="%v"><h1>Products</h1>%s</section>`, rc.LoaderData(), rc.Outlet())
			}),
		},
		"routes/product": {
			Loader: func(_ context.Context, args router.Args) (any, error) {
				return "Product " + args.Params["id"], nil
			},
			Action: func(_ context.Context, args router.Args) (any, error) {
				if err := args.Request.ParseForm(); err != nil {
					return nil, err
				}
				return "saved " + args.Request.PostForm.Get("name"), nil
			},
			Component: component(func(rc *router.RenderContext) string {
				out := fmt.Sprintf("<h2>%v</h2>", rc.LoaderData())
				if d := rc.ActionData(); d != nil {
					out += fmt.Sprintf(`<p role="status">%v</p>`, d)
				}
				return out
			}),
		},
		"routes/account": {
			Loader: func(context.Context, router.Args) (any, error) {
				return nil, router.Redirect("/login")
			},
		},
		"routes/echo": {
			Loader: func(_ context.Context, args router.Args) (any, error) {
				return args, nil
			},
			Component: component(func(rc *router.RenderContext) string {
				args := rc.LoaderData().(router.Args)
				h := args.Request.Header
				return fmt.Sprintf(`<dl><dt>lang</dt><dd id="lang">%s</dd><dt>tenant</dt><dd id="tenant">%s</dd><dt>ctx</dt><dd id="ctx">%v</dd></dl>`,
					h.Get("Accept-Language"), h.Get("X-Tenant"), args.Context)
			}),
		},
	}}
}

func newHarness(t *testing.T, opts ...Option) *Harness {
	t.Helper()
	base := []Option{
		WithFS(shop()),
		WithLoader(shopModules()),
		WithChain(middleware.New()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewHarness(append(base, opts...)...)
}

func TestNavigateTo(t *testing.T) {
	h := newHarness(t)

	res, err := h.NavigateTo(context.Background(), "/products/42")
	require.NoError(t, err)
	require.False(t, res.IsRedirect())
	assert.Equal(t, http.StatusOK, res.Status())
	assert.Equal(t, `<main><section data-sort=""><h1>Products</h1><h2>Product 42</h2></section></main>`, res.HTML)

	vtest.ExpectText(t, res.Screen, "Product 42")
	vtest.ExpectElement(t, res.Screen, "main > section > h2")

	state := res.Router.State()
	assert.True(t, state.Initialized)
	assert.Equal(t, "Product 42", state.LoaderData["product"])
}

func TestNavigateTo_PreservesQueryAndHash(t *testing.T) {
	h := newHarness(t)

	res, err := h.NavigateTo(context.Background(), "/products?sort=price")
	require.NoError(t, err)

	loc := res.Router.Location()
	assert.Equal(t, "/products", loc.Pathname)
	assert.Equal(t, "?sort=price", loc.Search)
	assert.Equal(t, "", loc.Hash)
	assert.Equal(t, "price", res.Context.LoaderData["routes/products"])

	res, err = h.NavigateTo(context.Background(), "/products?sort=name%20desc#reviews")
	require.NoError(t, err)
	loc = res.Router.Location()
	assert.Equal(t, "?sort=name%20desc", loc.Search)
	assert.Equal(t, "#reviews", loc.Hash)
	assert.Equal(t, "name desc", res.Context.LoaderData["routes/products"])
}

func TestNavigateTo_CleansPathname(t *testing.T) {
	h := newHarness(t)

	res, err := h.NavigateTo(context.Background(), "products//42/?tab=specs")
	require.NoError(t, err)
	assert.Equal(t, "/products/42", res.Router.Location().Pathname)
	assert.Equal(t, "?tab=specs", res.Router.Location().Search)
	vtest.ExpectText(t, res.Screen, "Product 42")
}

func TestNavigateTo_EscapedParams(t *testing.T) {
	modules := shopModules()
	modules.Modules["routes/product"].Component = component(func(rc *router.RenderContext) string {
		return fmt.Sprintf(`<h2 data-id="%s">%v</h2>`, rc.Params()["id"], rc.LoaderData())
	})
	h := newHarness(t, WithLoader(modules))

	res, err := h.NavigateTo(context.Background(), "/products/a%20b")
	require.NoError(t, err)

	vtest.ExpectText(t, res.Screen, "Product a b")
	vtest.ExpectAttribute(t, res.Screen, "data-id", "a b")
	assert.Equal(t, "/products/a%20b", res.Context.Location.Pathname)
	assert.Equal(t, res.Context.Location.Pathname, res.Router.Location().Pathname)
}

func TestNavigateTo_InvalidPath(t *testing.T) {
	h := newHarness(t)

	for _, p := range []string{"https://example.com/products", "//example.com", `/products\42`, "/../etc", "/a%zz"} {
		_, err := h.NavigateTo(context.Background(), p)
		require.Error(t, err, p)
		assert.Equal(t, "E121", errs.Code(err), p)
	}
}

func TestNavigateTo_Redirect(t *testing.T) {
	h := newHarness(t)

	res, err := h.NavigateTo(context.Background(), "/account")
	require.NoError(t, err)
	require.True(t, res.IsRedirect())
	assert.Equal(t, "/login", res.Redirect.Location())
	assert.Equal(t, http.StatusFound, res.Status())
	assert.Nil(t, res.Router)
	assert.Nil(t, res.Context)
	assert.Nil(t, res.Screen)
}

func TestNavigateTo_Headers(t *testing.T) {
	h := newHarness(t)

	res, err := h.NavigateTo(context.Background(), "/echo",
		WithHeader("x-tenant", "globex"),
		WithRequestContext("session-1"),
	)
	require.NoError(t, err)

	lang, err := res.Screen.Get("#lang")
	require.NoError(t, err)
	assert.Equal(t, "en", lang.Text())
	tenant, err := res.Screen.Get("#tenant")
	require.NoError(t, err)
	assert.Equal(t, "globex", tenant.Text())
	ctx, err := res.Screen.Get("#ctx")
	require.NoError(t, err)
	assert.Equal(t, "session-1", ctx.Text())

	args := res.Context.LoaderData["routes/echo"].(router.Args)
	assert.NotEmpty(t, args.Request.Header.Get(RequestIDHeader))
	assert.Equal(t, http.MethodGet, args.Request.Method)
}

func TestNavigateTo_RequestID(t *testing.T) {
	h := newHarness(t)

	res, err := h.NavigateTo(context.Background(), "/echo", WithHeaders(http.Header{
		RequestIDHeader: {"req-1"},
	}))
	require.NoError(t, err)
	args := res.Context.LoaderData["routes/echo"].(router.Args)
	assert.Equal(t, "req-1", args.Request.Header.Get(RequestIDHeader))

	first, err := h.NavigateTo(context.Background(), "/echo")
	require.NoError(t, err)
	second, err := h.NavigateTo(context.Background(), "/echo")
	require.NoError(t, err)
	a := first.Context.LoaderData["routes/echo"].(router.Args).Request.Header.Get(RequestIDHeader)
	b := second.Context.LoaderData["routes/echo"].(router.Args).Request.Header.Get(RequestIDHeader)
	assert.NotEqual(t, a, b)
}

func TestNavigateTo_Submit(t *testing.T) {
	h := newHarness(t)

	res, err := h.NavigateTo(context.Background(), "/products/7",
		WithMethod("post"),
		WithForm(url.Values{"name": {"Lamp"}}),
	)
	require.NoError(t, err)
	assert.Equal(t, "saved Lamp", res.Context.ActionData["product"])
	vtest.ExpectText(t, res.Screen, "saved Lamp")
	vtest.ExpectAttribute(t, res.Screen, "role", "status")
}

func TestNavigateTo_GetForm(t *testing.T) {
	h := newHarness(t)

	res, err := h.NavigateTo(context.Background(), "/products", WithForm(url.Values{"sort": {"rating"}}))
	require.NoError(t, err)
	assert.Equal(t, "rating", res.Context.LoaderData["routes/products"])
}

func TestNavigateTo_NotFound(t *testing.T) {
	h := newHarness(t)

	res, err := h.NavigateTo(context.Background(), "/nowhere")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.Status())
	vtest.ExpectText(t, res.Screen, "404 Not Found")
}

func TestNavigateTo_Middleware(t *testing.T) {
	chain := middleware.New()
	h := newHarness(t, WithChain(chain))
	assert.Same(t, chain, h.Middleware())

	dispose := chain.Loader(func(_ context.Context, args router.Args) (*router.Args, error) {
		if args.RouteID == "product" {
			args.Params = router.Params{"id": "99"}
			return &args, nil
		}
		return nil, nil
	})

	res, err := h.NavigateTo(context.Background(), "/products/1")
	require.NoError(t, err)
	vtest.ExpectText(t, res.Screen, "Product 99")

	dispose()
	res, err = h.NavigateTo(context.Background(), "/products/1")
	require.NoError(t, err)
	vtest.ExpectText(t, res.Screen, "Product 1")
}

func TestNavigateTo_MissingContext(t *testing.T) {
	h := newHarness(t)
	h.query = func(context.Context, *router.StaticHandler, *http.Request, ...router.QueryOption) (*router.QueryResult, error) {
		return &router.QueryResult{}, nil
	}

	_, err := h.NavigateTo(context.Background(), "/")
	require.Error(t, err)
	assert.Equal(t, "E130", errs.Code(err))
}

func TestNavigateTo_BuildError(t *testing.T) {
	fsys := shop()
	delete(fsys, "app/routes.json")
	h := newHarness(t, WithFS(fsys))

	_, err := h.NavigateTo(context.Background(), "/")
	require.Error(t, err)
	assert.Equal(t, "E102", errs.Code(err))
	assert.Error(t, h.Setup(context.Background()))
}

func TestHarness_Routes(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.Setup(context.Background()))

	first, err := h.Routes(context.Background())
	require.NoError(t, err)
	second, err := h.Routes(context.Background())
	require.NoError(t, err)
	assert.Same(t, first[0], second[0])
	assert.Equal(t, 1, h.Builder().Passes())

	h.Reset()
	third, err := h.Routes(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first[0], third[0])
}

func TestRouterMiddleware(t *testing.T) {
	assert.Same(t, middleware.Default(), RouterMiddleware())
	assert.Same(t, Default(), Default())
	assert.Same(t, middleware.Default(), Default().Middleware())
}
