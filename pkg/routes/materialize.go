package routes

import (
	"context"
	"log/slog"
	"path"

	"github.com/vango-dev/testrouter/internal/errors"
	"github.com/vango-dev/testrouter/pkg/middleware"
	"github.com/vango-dev/testrouter/pkg/resolver"
	"github.com/vango-dev/testrouter/pkg/routeconfig"
	"github.com/vango-dev/testrouter/pkg/router"
)

// materializer turns route config entries into route objects, loading
// modules depth-first in source order.
type materializer struct {
	ctx    context.Context
	loader resolver.Loader
	chain  *middleware.Chain
	logger *slog.Logger
	appDir string
	count  int
}

func (m *materializer) materialize(entries []routeconfig.Entry) ([]*router.Object, error) {
	out := make([]*router.Object, 0, len(entries))
	for _, e := range entries {
		o, err := m.object(e)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *materializer) object(e routeconfig.Entry) (*router.Object, error) {
	mod, err := m.load(e.File, e.ID)
	if err != nil {
		return nil, err
	}
	m.count++

	r := router.Route{
		ID:              e.ID,
		Path:            e.Path,
		Component:       mod.Component,
		Loader:          m.chain.WrapLoader(mod.Loader, e.ID),
		Action:          m.chain.WrapAction(mod.Action, e.ID),
		ErrorBoundary:   mod.ErrorBoundary,
		HydrateFallback: mod.HydrateFallback,
	}
	if e.Index {
		return router.NewIndex(r), nil
	}

	children, err := m.materialize(e.Children)
	if err != nil {
		return nil, err
	}
	return router.NewRoute(r, children...), nil
}

func (m *materializer) load(file, id string) (*router.Module, error) {
	mod, err := m.loader.Load(m.ctx, file)
	if err != nil {
		return nil, errors.New("E110").
			WithFile(path.Join(m.appDir, file)).
			WithDetailf("route %q", id).
			Wrap(err)
	}
	if mod == nil {
		mod = &router.Module{}
	}
	m.logger.Debug("loaded route module",
		"id", id,
		"file", path.Join(m.appDir, file),
		"loader", mod.Loader != nil,
		"action", mod.Action != nil,
	)
	return mod, nil
}
