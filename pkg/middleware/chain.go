package middleware

import (
	"context"
	"fmt"
	"sync"

	"github.com/vango-dev/testrouter/pkg/router"
)

// Kind selects a middleware sequence.
type Kind string

const (
	KindLoader Kind = "loader"
	KindAction Kind = "action"
)

// Func intercepts a loader or action call. Returning a non-nil *Args
// replaces the arguments seen by later entries and by the real handler;
// nil keeps the current ones. A non-nil error aborts the call.
type Func func(ctx context.Context, args router.Args) (*router.Args, error)

// entry boxes a Func so registrations are identified by pointer, not by
// function value.
type entry struct {
	fn Func
}

type handler = func(ctx context.Context, args router.Args) (any, error)

// Chain is an ordered set of loader and action interceptors.
// Chains are safe for concurrent use.
type Chain struct {
	mu      sync.Mutex
	loaders []*entry
	actions []*entry

	metrics *metrics
	tracer  tracerSource
}

// Option configures a Chain.
type Option func(*Chain)

// New creates an empty chain.
func New(opts ...Option) *Chain {
	c := &Chain{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultChain = New()

// Default returns the process-wide chain used by the testrouter facade.
func Default() *Chain {
	return defaultChain
}

// Register appends fn to the kind's sequence. The returned disposer
// removes exactly this registration and is safe to call more than once.
func (c *Chain) Register(kind Kind, fn Func) (dispose func()) {
	if fn == nil {
		return func() {}
	}
	e := &entry{fn: fn}

	c.mu.Lock()
	seq := c.sequence(kind)
	*seq = append(*seq, e)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.remove(kind, e) })
	}
}

// Loader registers fn for loader calls.
func (c *Chain) Loader(fn Func) (dispose func()) {
	return c.Register(KindLoader, fn)
}

// Action registers fn for action calls.
func (c *Chain) Action(fn Func) (dispose func()) {
	return c.Register(KindAction, fn)
}

// Use registers fn for both loader and action calls. The disposer removes
// both registrations.
func (c *Chain) Use(fn Func) (dispose func()) {
	dl := c.Register(KindLoader, fn)
	da := c.Register(KindAction, fn)
	return func() {
		dl()
		da()
	}
}

// Len returns the number of entries registered for kind.
func (c *Chain) Len(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(*c.sequence(kind))
}

// Clear removes every entry registered for kind.
func (c *Chain) Clear(kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.sequence(kind) = nil
}

// RemoveAll clears both sequences.
func (c *Chain) RemoveAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaders = nil
	c.actions = nil
}

// WrapLoader wraps a loader with the loader sequence. A nil loader stays nil.
func (c *Chain) WrapLoader(fn router.LoaderFunc, routeID string) router.LoaderFunc {
	if fn == nil {
		return nil
	}
	return c.wrap(KindLoader, fn, routeID)
}

// WrapAction wraps an action with the action sequence. A nil action stays nil.
func (c *Chain) WrapAction(fn router.ActionFunc, routeID string) router.ActionFunc {
	if fn == nil {
		return nil
	}
	return c.wrap(KindAction, fn, routeID)
}

// Wrap wraps fn with the kind's sequence. A nil fn stays nil.
func (c *Chain) Wrap(kind Kind, fn func(context.Context, router.Args) (any, error), routeID string) func(context.Context, router.Args) (any, error) {
	if fn == nil {
		return nil
	}
	return c.wrap(kind, fn, routeID)
}

func (c *Chain) wrap(kind Kind, fn handler, routeID string) handler {
	return func(ctx context.Context, args router.Args) (any, error) {
		args.RouteID = routeID
		for _, e := range c.snapshot(kind) {
			next, err := e.fn(ctx, args)
			if err != nil {
				return nil, err
			}
			if next != nil {
				args = *next
			}
		}
		return c.call(ctx, kind, routeID, fn, args)
	}
}

// snapshot copies the kind's sequence so entries registered or disposed
// during a call do not affect it.
func (c *Chain) snapshot(kind Kind) []*entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := *c.sequence(kind)
	out := make([]*entry, len(seq))
	copy(out, seq)
	return out
}

func (c *Chain) remove(kind Kind, e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := c.sequence(kind)
	for i, cur := range *seq {
		if cur == e {
			*seq = append((*seq)[:i:i], (*seq)[i+1:]...)
			return
		}
	}
}

// sequence must be called with c.mu held.
func (c *Chain) sequence(kind Kind) *[]*entry {
	switch kind {
	case KindLoader:
		return &c.loaders
	case KindAction:
		return &c.actions
	}
	panic(fmt.Sprintf("middleware: unknown kind %q", kind))
}
