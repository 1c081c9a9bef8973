package testrouter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/vango-dev/testrouter/internal/config"
	"github.com/vango-dev/testrouter/internal/errors"
	"github.com/vango-dev/testrouter/pkg/middleware"
	"github.com/vango-dev/testrouter/pkg/routepath"
	"github.com/vango-dev/testrouter/pkg/router"
	"github.com/vango-dev/testrouter/pkg/routes"
	"github.com/vango-dev/testrouter/pkg/vtest"
)

// RequestIDHeader is set on every synthetic request that lacks one.
const RequestIDHeader = "X-Request-Id"

type queryFunc func(ctx context.Context, h *router.StaticHandler, req *http.Request, opts ...router.QueryOption) (*router.QueryResult, error)

// Harness owns a route tree and simulates navigations against it.
type Harness struct {
	builder *routes.Builder
	logger  *slog.Logger
	query   queryFunc
}

// NewHarness creates a Harness.
func NewHarness(opts ...Option) *Harness {
	b := routes.New(opts...)
	return &Harness{
		builder: b,
		logger:  b.Logger(),
		query: func(ctx context.Context, h *router.StaticHandler, req *http.Request, opts ...router.QueryOption) (*router.QueryResult, error) {
			return h.Query(ctx, req, opts...)
		},
	}
}

// Routes returns the route tree, building it on first use.
func (h *Harness) Routes(ctx context.Context) ([]*router.Object, error) {
	return h.builder.Routes(ctx)
}

// Setup builds the route tree.
func (h *Harness) Setup(ctx context.Context) error {
	_, err := h.builder.Routes(ctx)
	return err
}

// Middleware returns the chain the harness wraps handlers with.
func (h *Harness) Middleware() *middleware.Chain {
	return h.builder.Chain()
}

// Builder returns the underlying route tree builder.
func (h *Harness) Builder() *routes.Builder {
	return h.builder
}

// Reset drops the built route tree so the next call rebuilds it.
func (h *Harness) Reset() {
	h.builder.Reset()
}

// NavigateOption configures a simulated navigation.
type NavigateOption func(*navigateOptions)

type navigateOptions struct {
	method         string
	header         http.Header
	form           url.Values
	requestContext any
}

// WithHeaders adds headers to the synthetic request. They override the
// configured headers of the same name.
func WithHeaders(h http.Header) NavigateOption {
	return func(o *navigateOptions) {
		for k, v := range h {
			o.header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
}

// WithHeader sets a single request header.
func WithHeader(key, value string) NavigateOption {
	return func(o *navigateOptions) {
		o.header.Set(key, value)
	}
}

// WithMethod sets the request method. Defaults to GET.
func WithMethod(method string) NavigateOption {
	return func(o *navigateOptions) {
		o.method = strings.ToUpper(method)
	}
}

// WithForm sends form as an urlencoded body, or as the query string for
// GET and HEAD.
func WithForm(form url.Values) NavigateOption {
	return func(o *navigateOptions) {
		o.form = form
	}
}

// WithRequestContext passes v to every loader and action as Args.Context.
func WithRequestContext(v any) NavigateOption {
	return func(o *navigateOptions) {
		o.requestContext = v
	}
}

// Result is the outcome of a simulated navigation. Exactly one of Redirect
// and Router is set.
type Result struct {
	// Redirect is the 3xx response resolution ended in.
	Redirect *router.Response

	// Router is a memory router seeded with Context at the navigated
	// location.
	Router *router.MemoryRouter

	// Context is the hydration context static resolution produced.
	Context *router.HydrationContext

	// HTML is the rendered router.
	HTML string

	// Screen is HTML parsed for queries.
	Screen *vtest.Screen
}

// IsRedirect reports whether the navigation ended in a redirect.
func (r *Result) IsRedirect() bool {
	return r != nil && r.Redirect != nil
}

// Status returns the hydration status code, or the redirect status.
func (r *Result) Status() int {
	switch {
	case r.Redirect != nil:
		return r.Redirect.Status
	case r.Context != nil:
		return r.Context.StatusCode
	}
	return 0
}

// NavigateTo resolves path like a server would, then seeds a fresh memory
// router with the result and renders it. The query string and fragment of
// path are kept on the router's initial location.
func (h *Harness) NavigateTo(ctx context.Context, path string, opts ...NavigateOption) (*Result, error) {
	tree, err := h.builder.Routes(ctx)
	if err != nil {
		return nil, err
	}
	cfg := h.builder.Config()
	if cfg == nil {
		cfg = config.New()
	}

	o := navigateOptions{method: http.MethodGet, header: make(http.Header)}
	for _, opt := range opts {
		opt(&o)
	}

	loc, err := parseTarget(path)
	if err != nil {
		return nil, err
	}

	req, err := newRequest(ctx, cfg, loc, o)
	if err != nil {
		return nil, err
	}

	handler, err := router.NewStaticHandler(tree)
	if err != nil {
		return nil, err
	}
	res, err := h.query(ctx, handler, req, router.WithRequestContext(o.requestContext))
	if err != nil {
		return nil, err
	}

	if res.IsRedirect() {
		h.logger.Debug("navigation redirected",
			"path", loc.String(),
			"method", req.Method,
			"status", res.Redirect.Status,
			"location", res.Redirect.Location(),
		)
		return &Result{Redirect: res.Redirect}, nil
	}
	if res.Context == nil {
		return nil, errors.New("E130").WithDetailf("%s %s", req.Method, loc.String())
	}

	mr, err := router.NewMemoryRouter(tree, router.MemoryOptions{
		InitialEntries: []string{loc.String()},
		HydrationData:  res.Context,
		Origin:         cfg.Origin,
	})
	if err != nil {
		return nil, err
	}
	html, err := mr.Render(ctx)
	if err != nil {
		return nil, err
	}
	screen, err := vtest.Parse(html)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("navigated",
		"path", loc.String(),
		"method", req.Method,
		"status", res.Context.StatusCode,
		"request_id", req.Header.Get(RequestIDHeader),
	)
	return &Result{
		Router:  mr,
		Context: res.Context,
		HTML:    html,
		Screen:  screen,
	}, nil
}

// parseTarget splits path into a location with a canonical pathname. The
// query and fragment are kept verbatim.
func parseTarget(path string) (router.Location, error) {
	if err := routepath.CheckTarget(path); err != nil {
		return router.Location{}, errors.New("E121").WithDetailf("%q", path).Wrap(err)
	}
	loc := router.ParsePath(path)
	pathname, err := routepath.Clean(loc.Pathname)
	if err != nil {
		return router.Location{}, errors.New("E121").WithDetailf("%q", path).Wrap(err)
	}
	loc.Pathname = pathname
	return loc, nil
}

func newRequest(ctx context.Context, cfg *config.Config, loc router.Location, o navigateOptions) (*http.Request, error) {
	target := strings.TrimRight(cfg.Origin, "/") + loc.Pathname + loc.Search

	var body io.Reader
	if o.form != nil {
		if o.method == http.MethodGet || o.method == http.MethodHead {
			q := loc.Query()
			for k, v := range o.form {
				q[k] = append(q[k], v...)
			}
			target = strings.TrimRight(cfg.Origin, "/") + loc.Pathname + "?" + q.Encode()
		} else {
			body = strings.NewReader(o.form.Encode())
		}
	}

	req, err := http.NewRequestWithContext(ctx, o.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", loc.String(), err)
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range o.header {
		req.Header[k] = v
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return req, nil
}
