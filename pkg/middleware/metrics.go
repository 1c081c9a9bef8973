package middleware

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/testrouter/pkg/router"
)

const metricsNamespace = "testrouter"

// metrics holds the Prometheus collectors for wrapped handler calls.
type metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// WithRegisterer records call counts and durations of wrapped handlers on
// reg. Several chains may share a registerer; they share its collectors.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Chain) {
		if reg == nil {
			c.metrics = nil
			return
		}
		c.metrics = newMetrics(reg)
	}
}

func newMetrics(reg prometheus.Registerer) *metrics {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "handler_calls_total",
		Help:      "Total number of wrapped loader and action calls",
	}, []string{"kind", "route_id", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "handler_duration_seconds",
		Help:      "Duration of wrapped loader and action calls in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind", "route_id"})

	return &metrics{
		calls:    register(reg, calls),
		duration: register(reg, duration),
	}
}

// register registers c on reg, reusing an identical collector that is
// already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) observe(kind Kind, routeID, status string, d time.Duration) {
	m.calls.WithLabelValues(string(kind), routeID, status).Inc()
	m.duration.WithLabelValues(string(kind), routeID).Observe(d.Seconds())
}

// callStatus classifies a handler outcome without using error text, which
// would blow up label cardinality.
func callStatus(v any, err error) string {
	var resp *router.Response
	switch {
	case errors.As(err, &resp) && resp.IsRedirect():
		return "redirect"
	case err != nil:
		return "error"
	}
	if resp, ok := v.(*router.Response); ok && resp.IsRedirect() {
		return "redirect"
	}
	return "ok"
}
