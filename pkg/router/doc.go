// Package router is the in-process host router the test harness drives.
//
// It models a nested route tree the way a file-system routed app declares
// it, resolves requests against that tree without a server, and renders the
// resulting match chain to HTML.
//
// # Route Objects
//
// Routes are built with NewRoute (non-index, always carries a children
// list, possibly empty) or NewIndex (matches its parent's path, never has
// children):
//
//	root := router.NewRoute(router.Route{ID: "root", Path: "/", Component: shell},
//	    router.NewIndex(router.Route{ID: "routes/home", Component: home}),
//	    router.NewRoute(router.Route{ID: "routes/products", Path: "products", Loader: list}),
//	)
//
// # Matching
//
// The tree is flattened into branches (children first, so deeper routes take
// precedence over their parent's own branch) and each branch pattern is
// registered on a chi mux. Path segments use colon params and a trailing
// splat:
//
//	products/:id   → /products/{id}
//	files/*        → /files/*
//
// # Static Resolution
//
// StaticHandler.Query runs the action (for mutations) and loaders of every
// matched route and returns a HydrationContext, or a Redirect when a loader
// or action produced a 3xx Response:
//
//	h, _ := router.NewStaticHandler([]*router.Object{root})
//	res, err := h.Query(ctx, req)
//	if res.IsRedirect() { ... }
//
// # Memory Router
//
// A MemoryRouter holds an in-memory history stack. Seeded with a
// HydrationContext it starts initialized and renders without re-running
// loaders:
//
//	mr, _ := router.NewMemoryRouter(routes, router.MemoryOptions{
//	    InitialEntries: []string{"/products?sort=price"},
//	    HydrationData:  res.Context,
//	})
//	html, err := mr.Render(ctx)
package router
