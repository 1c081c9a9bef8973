// Package routes builds the route tree of an application under test.
//
// A Builder reads the project configuration, the app's route config and
// its root module, loads every route module through a resolver.Loader and
// wraps each loader and action with a middleware.Chain. The tree is built
// once and shared by every caller:
//
//	b := routes.New(
//	    routes.WithRoot("."),
//	    routes.WithRegistry(app.Modules()),
//	)
//	tree, err := b.Routes(ctx)
//
// The result always has a single top-level "root" route at "/" whose
// children are the app's top-level routes.
package routes
