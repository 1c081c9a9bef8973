package router

import (
	"fmt"
	"net/url"
)

// NavigateOptions configures a MemoryRouter navigation.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Params are query parameters added to the target URL.
	Params map[string]any

	// State is attached to the new history entry.
	State any

	// RequestContext is passed to loaders and actions as Args.Context.
	RequestContext any
}

// NavigateOption is a functional option for Navigate and Submit.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithParams adds query parameters to the navigation URL.
func WithParams(params map[string]any) NavigateOption {
	return func(o *NavigateOptions) {
		o.Params = params
	}
}

// WithState attaches state to the new history entry.
func WithState(state any) NavigateOption {
	return func(o *NavigateOptions) {
		o.State = state
	}
}

// WithNavigationContext sets the ambient context for the navigation's
// loaders and actions.
func WithNavigationContext(v any) NavigateOption {
	return func(o *NavigateOptions) {
		o.RequestContext = v
	}
}

// applyParams merges query parameters into loc's search string.
func applyParams(loc Location, params map[string]any) Location {
	if len(params) == 0 {
		return loc
	}
	q := loc.Query()
	for k, v := range params {
		q.Set(k, fmt.Sprintf("%v", v))
	}
	loc.Search = "?" + q.Encode()
	return loc
}

// href returns loc as an absolute URL under origin.
func href(origin string, loc Location) string {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" {
		return "http://localhost" + loc.String()
	}
	return u.Scheme + "://" + u.Host + loc.String()
}
