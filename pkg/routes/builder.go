package routes

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/vango-dev/testrouter/internal/config"
	"github.com/vango-dev/testrouter/internal/errors"
	"github.com/vango-dev/testrouter/pkg/middleware"
	"github.com/vango-dev/testrouter/pkg/resolver"
	"github.com/vango-dev/testrouter/pkg/routeconfig"
	"github.com/vango-dev/testrouter/pkg/router"
)

// RootID is the ID of the synthetic top-level route.
const RootID = "root"

// State is the lifecycle state of a Builder.
type State int

const (
	Unbuilt State = iota
	Building
	Built
	Failed
)

func (s State) String() string {
	switch s {
	case Unbuilt:
		return "unbuilt"
	case Building:
		return "building"
	case Built:
		return "built"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Builder builds a route tree at most once.
type Builder struct {
	root     string
	fsys     fs.FS
	cfg      *config.Config
	registry *resolver.Registry
	loader   resolver.Loader
	chain    *middleware.Chain
	logger   *slog.Logger

	mu     sync.Mutex
	state  State
	done   chan struct{}
	routes []*router.Object
	err    error
	used   *config.Config
	active resolver.Loader
	passes int
}

// Option configures a Builder.
type Option func(*Builder)

// WithRoot sets the project root directory. Defaults to ".".
func WithRoot(dir string) Option {
	return func(b *Builder) {
		b.root = dir
	}
}

// WithFS reads the project from fsys instead of the root directory.
func WithFS(fsys fs.FS) Option {
	return func(b *Builder) {
		b.fsys = fsys
	}
}

// WithConfig uses cfg instead of loading testrouter.config.*.
func WithConfig(cfg *config.Config) Option {
	return func(b *Builder) {
		b.cfg = cfg
	}
}

// WithRegistry resolves modules from reg through a resolver.FileLoader.
func WithRegistry(reg *resolver.Registry) Option {
	return func(b *Builder) {
		b.registry = reg
	}
}

// WithLoader resolves modules with l. It takes precedence over
// WithRegistry.
func WithLoader(l resolver.Loader) Option {
	return func(b *Builder) {
		b.loader = l
	}
}

// WithChain wraps handlers with c. Defaults to middleware.Default().
func WithChain(c *middleware.Chain) Option {
	return func(b *Builder) {
		b.chain = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{root: "."}
	for _, opt := range opts {
		opt(b)
	}
	if b.chain == nil {
		b.chain = middleware.Default()
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Routes returns the route tree, building it on first use. Concurrent
// callers share one build. A failed build is returned to every caller
// until Reset.
//
// The build itself is not canceled with ctx; a caller whose ctx ends stops
// waiting and the build completes for the others.
func (b *Builder) Routes(ctx context.Context) ([]*router.Object, error) {
	b.mu.Lock()
	switch b.state {
	case Built:
		routes := b.routes
		b.mu.Unlock()
		return routes, nil
	case Failed:
		err := b.err
		b.mu.Unlock()
		return nil, err
	case Unbuilt:
		b.state = Building
		b.done = make(chan struct{})
		b.passes++
		go b.run(context.WithoutCancel(ctx), b.done)
	}
	done := b.done
	b.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.routes, b.err
}

func (b *Builder) run(ctx context.Context, done chan struct{}) {
	routes, cfg, err := b.build(ctx)

	b.mu.Lock()
	if err != nil {
		b.state = Failed
		b.err = err
	} else {
		b.state = Built
		b.routes = routes
		b.used = cfg
	}
	b.mu.Unlock()
	close(done)
}

// State returns the builder's state.
func (b *Builder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Passes returns the number of builds started.
func (b *Builder) Passes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.passes
}

// Chain returns the middleware chain route handlers are wrapped with.
func (b *Builder) Chain() *middleware.Chain {
	return b.chain
}

// Logger returns the builder's logger.
func (b *Builder) Logger() *slog.Logger {
	return b.logger
}

// Config returns the configuration of the last successful build.
func (b *Builder) Config() *config.Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Reset discards the built tree or cached failure so the next call to
// Routes builds again. An in-flight build is waited for first.
func (b *Builder) Reset() {
	for {
		b.mu.Lock()
		if b.state != Building {
			break
		}
		done := b.done
		b.mu.Unlock()
		<-done
	}
	defer b.mu.Unlock()

	b.state = Unbuilt
	b.routes = nil
	b.err = nil
	b.used = nil
	if p, ok := b.active.(interface{ Purge() }); ok {
		p.Purge()
	}
}

func (b *Builder) build(ctx context.Context) ([]*router.Object, *config.Config, error) {
	start := time.Now()

	fsys := b.fsys
	if fsys == nil {
		fsys = os.DirFS(b.root)
	}

	cfg := b.cfg
	if cfg == nil {
		var err error
		if b.fsys != nil {
			cfg, err = config.LoadFS(fsys)
		} else {
			cfg, err = config.Load(b.root)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	appDir := strings.Trim(path.Clean(cfg.AppDirectory), "/")
	appFS, err := fs.Sub(fsys, appDir)
	if err != nil {
		return nil, nil, errors.New("E104").WithDetailf("appDirectory %q", cfg.AppDirectory).Wrap(err)
	}
	where := path.Join(b.root, appDir)
	b.logger.Info("found app directory", "dir", where)

	entries, err := b.entries(appFS, cfg, where)
	if err != nil {
		return nil, nil, err
	}

	rootFile, ok := resolver.Finder{FS: appFS, Extensions: resolver.DefaultExtensions}.Find("root")
	if !ok {
		return nil, nil, errors.New("E103").
			WithDetailf("No root.(go|templ) found in %s", where).
			WithSuggestion("Create " + path.Join(where, "root.go") + " and register its module as \"root\"")
	}

	loader := b.loader
	if loader == nil {
		loader = resolver.NewFileLoader(appFS, b.registry)
	}
	b.mu.Lock()
	b.active = loader
	b.mu.Unlock()

	m := materializer{ctx: ctx, loader: loader, chain: b.chain, logger: b.logger, appDir: appDir}
	rootModule, err := m.load(rootFile, RootID)
	if err != nil {
		return nil, nil, err
	}
	children, err := m.materialize(entries)
	if err != nil {
		return nil, nil, err
	}

	root := router.NewRoute(router.Route{
		ID:              RootID,
		Path:            "/",
		Component:       rootModule.Component,
		Loader:          b.chain.WrapLoader(rootModule.Loader, RootID),
		Action:          b.chain.WrapAction(rootModule.Action, RootID),
		ErrorBoundary:   rootModule.ErrorBoundary,
		HydrateFallback: rootModule.HydrateFallback,
	}, children...)

	b.logger.Info("built route tree",
		"routes", m.count+1,
		"duration", time.Since(start),
	)
	return []*router.Object{root}, cfg, nil
}

// entries reads the route config, or discovers it when flat routes are on.
func (b *Builder) entries(appFS fs.FS, cfg *config.Config, where string) ([]routeconfig.Entry, error) {
	var entries []routeconfig.Entry
	if cfg.FlatRoutes {
		dir := strings.Trim(path.Clean(cfg.RoutesDirectory), "/")
		if info, err := fs.Stat(appFS, dir); err != nil || !info.IsDir() {
			return nil, errors.New("E102").
				WithDetailf("No %s directory found in %s", dir, where).
				WithSuggestion("Create the directory or set flatRoutes to false and add a routes file")
		}
		discovered, err := routeconfig.Discover(appFS, dir, cfg.Ignore...)
		if err != nil {
			return nil, errors.New("E105").Wrap(err)
		}
		entries = discovered
		b.logger.Debug("discovered routes", "dir", path.Join(where, dir), "routes", len(entries))
	} else {
		name, ok := resolver.Finder{FS: appFS, Extensions: resolver.RouteConfigExtensions}.Find("routes")
		if !ok {
			return nil, errors.New("E102").
				WithDetailf("No routes.(yaml|yml|json|toml) found in %s", where).
				WithSuggestion("Create " + path.Join(where, "routes.yaml") + " or set flatRoutes to true")
		}
		parsed, err := routeconfig.ParseFile(appFS, name)
		if err != nil {
			return nil, errors.New("E105").
				WithLocationFromError(path.Join(where, name), err).
				Wrap(err)
		}
		entries = parsed
		b.logger.Debug("loaded route config", "file", path.Join(where, name))
	}

	entries = routeconfig.Normalize(entries)
	if err := routeconfig.Validate(entries); err != nil {
		return nil, errors.New("E105").Wrap(err)
	}
	return entries, nil
}
