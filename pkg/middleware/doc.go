// Package middleware provides the interceptor chain applied to route loaders
// and actions.
//
// A Chain keeps two ordered sequences of Func entries, one for loader calls
// and one for action calls. Wrapping a handler folds the matching sequence
// over the call arguments in registration order before the real handler
// runs:
//
//	chain := middleware.New()
//	dispose := chain.Loader(func(ctx context.Context, args router.Args) (*router.Args, error) {
//	    args.Context = session
//	    return &args, nil
//	})
//	defer dispose()
//
//	wrapped := chain.WrapLoader(module.Loader, "routes/products")
//
// An entry that returns a nil *Args acts as an observer: the current
// arguments carry forward unchanged.
//
// # Observability
//
// Chains optionally record Prometheus metrics and OpenTelemetry spans for
// every wrapped call:
//
//	chain := middleware.New(
//	    middleware.WithRegisterer(prometheus.NewRegistry()),
//	    middleware.WithTracerProvider(tp),
//	)
//
// Metrics collected:
//   - testrouter_handler_calls_total{kind,route_id,status}
//   - testrouter_handler_duration_seconds{kind,route_id}
//
// Without WithTracerProvider the global OpenTelemetry provider is used.
package middleware
