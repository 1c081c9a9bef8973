// Package resolver locates route modules on disk and resolves them to
// router.Module values.
//
// Go cannot load source files at runtime, so a module is compiled into the
// test binary and registered under its app-relative path without extension:
//
//	reg := resolver.NewRegistry()
//	reg.Register("root", &router.Module{Component: Root})
//	reg.Register("routes/products", &router.Module{
//	    Component: Products,
//	    Loader:    LoadProducts,
//	})
//
// A FileLoader pairs the registry with the app directory: it confirms the
// referenced file exists before looking the module up, so a route config
// pointing at a deleted file still fails the build.
package resolver
