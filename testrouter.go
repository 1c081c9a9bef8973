// Package testrouter runs an application's routes inside go test.
//
// It builds the route tree from the project's route config and registered
// route modules, wraps every loader and action with a middleware chain,
// and simulates navigations without a running server:
//
//	func init() {
//	    testrouter.Modules.Register("root", app.Root)
//	    testrouter.Modules.Register("routes/products", products.Module)
//	}
//
//	func TestProducts(t *testing.T) {
//	    res, err := testrouter.NavigateTo(context.Background(), "/products?sort=price")
//	    require.NoError(t, err)
//	    vtest.ExpectText(t, res.Screen, "Keyboard")
//	}
//
// Middleware registered on RouterMiddleware sees every wrapped call:
//
//	dispose := testrouter.RouterMiddleware().Loader(func(ctx context.Context, args router.Args) (*router.Args, error) {
//	    args.Context = fakeSession
//	    return &args, nil
//	})
//	defer dispose()
package testrouter

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/vango-dev/testrouter/internal/config"
	"github.com/vango-dev/testrouter/pkg/middleware"
	"github.com/vango-dev/testrouter/pkg/resolver"
	"github.com/vango-dev/testrouter/pkg/router"
	"github.com/vango-dev/testrouter/pkg/routes"
)

// Modules is the registry the default harness resolves route modules from.
var Modules = resolver.NewRegistry()

// Option configures a Harness.
type Option = routes.Option

// Harness options, re-exported from pkg/routes.
var (
	WithRoot     = routes.WithRoot
	WithFS       = routes.WithFS
	WithConfig   = routes.WithConfig
	WithRegistry = routes.WithRegistry
	WithLoader   = routes.WithLoader
	WithChain    = routes.WithChain
	WithLogger   = routes.WithLogger
)

var (
	defaultOnce    sync.Once
	defaultHarness *Harness
)

// Default returns the process-wide harness. Its project root is the
// nearest directory at or above the working directory that holds a
// testrouter.config file, and it resolves modules from Modules.
func Default() *Harness {
	defaultOnce.Do(func() {
		root := "."
		if wd, err := os.Getwd(); err == nil {
			root, _ = config.FindRoot(wd)
		}
		defaultHarness = NewHarness(
			WithRoot(root),
			WithRegistry(Modules),
			WithLogger(slog.Default()),
		)
	})
	return defaultHarness
}

// GetRoutes returns the default harness's route tree, building it on first
// use.
func GetRoutes(ctx context.Context) ([]*router.Object, error) {
	return Default().Routes(ctx)
}

// Setup builds the default harness's route tree ahead of the first
// navigation.
func Setup(ctx context.Context) error {
	return Default().Setup(ctx)
}

// NavigateTo simulates a navigation on the default harness.
func NavigateTo(ctx context.Context, path string, opts ...NavigateOption) (*Result, error) {
	return Default().NavigateTo(ctx, path, opts...)
}

// RouterMiddleware returns the process-wide middleware chain.
func RouterMiddleware() *middleware.Chain {
	return middleware.Default()
}
