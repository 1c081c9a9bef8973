package router

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	errs "github.com/vango-dev/testrouter/internal/errors"
)

// DefaultOrigin is the origin synthetic requests are issued against.
const DefaultOrigin = "http://localhost"

// maxRedirects bounds redirect chains followed during a navigation.
const maxRedirects = 10

// HistoryAction describes how the current entry was reached.
type HistoryAction string

const (
	ActionPop     HistoryAction = "POP"
	ActionPush    HistoryAction = "PUSH"
	ActionReplace HistoryAction = "REPLACE"
)

// MemoryOptions configures a MemoryRouter.
type MemoryOptions struct {
	// InitialEntries seed the history stack. Defaults to ["/"].
	InitialEntries []string

	// InitialIndex selects the current entry. Clamped to the stack.
	InitialIndex int

	// HydrationData seeds loader data, action data and errors. A hydrated
	// router starts initialized and does not re-run loaders.
	HydrationData *HydrationContext

	// Origin for requests issued by client navigations.
	// Defaults to DefaultOrigin.
	Origin string
}

// RouterState is a snapshot of a MemoryRouter.
type RouterState struct {
	HistoryAction HistoryAction
	Location      Location
	Matches       []Match
	LoaderData    map[string]any
	ActionData    map[string]any
	Errors        map[string]error
	Initialized   bool
}

// MemoryRouter is an in-memory router with a history stack.
type MemoryRouter struct {
	mu      sync.Mutex
	handler *StaticHandler
	origin  string
	entries []Location
	index   int
	state   RouterState
}

// NewMemoryRouter creates a router over routes at the configured entry.
func NewMemoryRouter(routes []*Object, opts MemoryOptions) (*MemoryRouter, error) {
	h, err := NewStaticHandler(routes)
	if err != nil {
		return nil, err
	}

	initial := opts.InitialEntries
	if len(initial) == 0 {
		initial = []string{"/"}
	}
	entries := make([]Location, len(initial))
	for i, e := range initial {
		entries[i] = ParsePath(e)
		entries[i].Key = "default"
		if i > 0 {
			entries[i].Key = newKey()
		}
	}

	idx := opts.InitialIndex
	if idx < 0 {
		idx = 0
	}
	if idx >= len(entries) {
		idx = len(entries) - 1
	}

	origin := opts.Origin
	if origin == "" {
		origin = DefaultOrigin
	}

	r := &MemoryRouter{
		handler: h,
		origin:  origin,
		entries: entries,
		index:   idx,
	}

	loc := entries[idx]
	r.state = RouterState{
		HistoryAction: ActionPop,
		Location:      loc,
		LoaderData:    make(map[string]any),
		ActionData:    make(map[string]any),
	}

	matches, ok := h.Match(loc.Pathname)
	if ok {
		r.state.Matches = matches
	}

	if hd := opts.HydrationData; hd != nil {
		copyInto(r.state.LoaderData, hd.LoaderData)
		copyInto(r.state.ActionData, hd.ActionData)
		if len(hd.Errors) > 0 {
			r.state.Errors = make(map[string]error, len(hd.Errors))
			for k, v := range hd.Errors {
				r.state.Errors[k] = v
			}
		}
		if !ok {
			r.state.Matches = hd.Matches
		}
		r.state.Initialized = true
		return r, nil
	}

	if !ok {
		hc := h.shortCircuit(&HydrationContext{Location: loc}, http.StatusNotFound)
		r.state.Matches = hc.Matches
		r.state.Errors = hc.Errors
		r.state.Initialized = true
		return r, nil
	}

	r.state.Initialized = !hasLoaders(matches)
	return r, nil
}

// State returns a snapshot of the router state.
func (r *MemoryRouter) State() RouterState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Location returns the current location.
func (r *MemoryRouter) Location() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Location
}

// Entries returns the history stack and the current index.
func (r *MemoryRouter) Entries() ([]Location, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Location, len(r.entries))
	copy(out, r.entries)
	return out, r.index
}

// Initialize runs the loaders of the current location when the router was
// not hydrated. It is a no-op on an initialized router.
func (r *MemoryRouter) Initialize(ctx context.Context) error {
	r.mu.Lock()
	initialized := r.state.Initialized
	loc := r.state.Location
	idx := r.index
	r.mu.Unlock()
	if initialized {
		return nil
	}
	return r.load(ctx, http.MethodGet, loc, nil, NavigateOptions{Replace: true}, ActionPop, idx)
}

// Navigate performs a client navigation to to, running loaders and
// following redirects.
func (r *MemoryRouter) Navigate(ctx context.Context, to string, opts ...NavigateOption) error {
	var o NavigateOptions
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	loc := applyParams(resolveTo(to, r.state.Location), o.Params)
	r.mu.Unlock()
	loc.State = o.State

	action := ActionPush
	if o.Replace {
		action = ActionReplace
	}
	return r.load(ctx, http.MethodGet, loc, nil, o, action, -1)
}

// Submit sends a form submission to the action of the route matching to.
func (r *MemoryRouter) Submit(ctx context.Context, to, method string, form url.Values, opts ...NavigateOption) error {
	var o NavigateOptions
	for _, opt := range opts {
		opt(&o)
	}
	if method == "" {
		method = http.MethodPost
	}

	r.mu.Lock()
	loc := resolveTo(to, r.state.Location)
	r.mu.Unlock()

	action := ActionPush
	if o.Replace {
		action = ActionReplace
	}
	return r.load(ctx, strings.ToUpper(method), loc, form, o, action, -1)
}

// Go moves delta entries through the history stack and reloads. The
// current index only moves once the target entry has loaded.
func (r *MemoryRouter) Go(ctx context.Context, delta int) error {
	r.mu.Lock()
	idx := r.index + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(r.entries) {
		idx = len(r.entries) - 1
	}
	loc := r.entries[idx]
	r.mu.Unlock()

	return r.load(ctx, http.MethodGet, loc, nil, NavigateOptions{Replace: true}, ActionPop, idx)
}

// Back navigates one entry back.
func (r *MemoryRouter) Back(ctx context.Context) error {
	return r.Go(ctx, -1)
}

// Render renders the current state to HTML.
func (r *MemoryRouter) Render(ctx context.Context) (string, error) {
	return Render(ctx, r.State())
}

// load resolves loc, following redirects, and commits the result. at is the
// history index a POP lands on.
func (r *MemoryRouter) load(ctx context.Context, method string, loc Location, form url.Values, o NavigateOptions, action HistoryAction, at int) error {
	for hop := 0; ; hop++ {
		if hop > maxRedirects {
			return errs.New("E131").WithDetailf("more than %d redirects starting from %s", maxRedirects, loc.String())
		}

		req, err := r.newRequest(ctx, method, loc, form)
		if err != nil {
			return err
		}

		res, err := r.handler.Query(ctx, req, WithRequestContext(o.RequestContext))
		if err != nil {
			return err
		}
		if res.IsRedirect() {
			next, err := r.redirectTarget(loc, res.Redirect.Location())
			if err != nil {
				return err
			}
			loc = next
			method, form = http.MethodGet, nil
			continue
		}
		if res.Context == nil {
			return errs.New("E130").WithDetailf("navigating to %s", loc.String())
		}

		r.commit(loc, res.Context, action, at)
		return nil
	}
}

// redirectTarget resolves a redirect Location header against from. Absolute
// targets must share the router's origin.
func (r *MemoryRouter) redirectTarget(from Location, target string) (Location, error) {
	u, err := url.Parse(target)
	if err != nil {
		return Location{}, errs.New("E133").WithDetailf("redirect from %s to %q", from.String(), target).Wrap(err)
	}
	if u.Scheme == "" && u.Host == "" {
		return resolveTo(target, from), nil
	}

	origin, err := url.Parse(r.origin)
	if err != nil {
		return Location{}, fmt.Errorf("parsing origin %q: %w", r.origin, err)
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = origin.Scheme
	}
	if !strings.EqualFold(scheme, origin.Scheme) || !strings.EqualFold(u.Host, origin.Host) {
		return Location{}, errs.New("E133").WithDetailf("redirect from %s to %s", from.String(), target)
	}

	return locationFromURL(u), nil
}

func (r *MemoryRouter) newRequest(ctx context.Context, method string, loc Location, form url.Values) (*http.Request, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, href(r.origin, loc), body)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", loc.String(), err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

func (r *MemoryRouter) commit(loc Location, hc *HydrationContext, action HistoryAction, at int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if action == ActionPop && at >= 0 && at < len(r.entries) {
		r.index = at
	}

	switch action {
	case ActionPush:
		loc.Key = newKey()
		r.entries = append(r.entries[:r.index+1], loc)
		r.index = len(r.entries) - 1
	case ActionReplace:
		loc.Key = newKey()
		r.entries[r.index] = loc
	default:
		loc.Key = r.entries[r.index].Key
		r.entries[r.index] = loc
	}

	r.state = RouterState{
		HistoryAction: action,
		Location:      loc,
		Matches:       hc.Matches,
		LoaderData:    hc.LoaderData,
		ActionData:    hc.ActionData,
		Errors:        hc.Errors,
		Initialized:   true,
	}
}

func hasLoaders(matches []Match) bool {
	for _, m := range matches {
		if m.Route.Loader != nil {
			return true
		}
	}
	return false
}

func copyInto(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}

func newKey() string {
	return uuid.NewString()[:8]
}
