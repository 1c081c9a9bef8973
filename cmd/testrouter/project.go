package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vango-dev/testrouter/internal/config"
	"github.com/vango-dev/testrouter/pkg/middleware"
	"github.com/vango-dev/testrouter/pkg/resolver"
	"github.com/vango-dev/testrouter/pkg/router"
	"github.com/vango-dev/testrouter/pkg/routes"
)

type projectOptions struct {
	root    string
	verbose bool
	noColor bool
}

// project is a route tree materialized with stub modules.
type project struct {
	cfg     *config.Config
	tree    []*router.Object
	handler *router.StaticHandler
}

func loadProject(ctx context.Context, opts *projectOptions, stderr io.Writer) (*project, error) {
	cfg, err := config.Load(opts.root)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	b := routes.New(
		routes.WithRoot(opts.root),
		routes.WithConfig(cfg),
		routes.WithLoader(resolver.StubLoader{FS: os.DirFS(filepath.Join(opts.root, cfg.AppDirectory))}),
		routes.WithChain(middleware.New()),
		routes.WithLogger(logger),
	)
	tree, err := b.Routes(ctx)
	if err != nil {
		return nil, err
	}
	handler, err := router.NewStaticHandler(tree)
	if err != nil {
		return nil, err
	}
	return &project{cfg: cfg, tree: tree, handler: handler}, nil
}
