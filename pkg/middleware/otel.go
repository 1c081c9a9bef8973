package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/testrouter/pkg/router"
)

// tracerName is the instrumentation scope of spans opened by chains.
const tracerName = "github.com/vango-dev/testrouter"

type tracerSource struct {
	provider trace.TracerProvider
}

func (s tracerSource) tracer() trace.Tracer {
	if s.provider != nil {
		return s.provider.Tracer(tracerName)
	}
	return otel.Tracer(tracerName)
}

// WithTracerProvider traces wrapped calls with tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Chain) {
		c.tracer.provider = tp
	}
}

// call runs the real handler inside a span named "<kind> <routeID>" and
// records its outcome.
func (c *Chain) call(ctx context.Context, kind Kind, routeID string, fn handler, args router.Args) (any, error) {
	ctx, span := c.tracer.tracer().Start(ctx, string(kind)+" "+routeID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("testrouter.kind", string(kind)),
			attribute.String("testrouter.route_id", routeID),
		),
	)
	defer span.End()

	start := time.Now()
	v, err := fn(ctx, args)
	status := callStatus(v, err)

	span.SetAttributes(attribute.String("testrouter.status", status))
	if status == "error" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if c.metrics != nil {
		c.metrics.observe(kind, routeID, status, time.Since(start))
	}
	return v, err
}
