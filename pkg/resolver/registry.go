package resolver

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vango-dev/testrouter/pkg/router"
)

// Factory produces a module. An error is reported as a load failure of the
// module's file.
type Factory func() (*router.Module, error)

// Registry maps module keys to compiled route modules.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Factory)}
}

// Register binds a module to key. The key may carry a file extension.
// Registering a key twice panics.
func (r *Registry) Register(key string, m *router.Module) {
	if m == nil {
		panic(fmt.Sprintf("resolver: nil module for %q", key))
	}
	r.RegisterFactory(key, func() (*router.Module, error) { return m, nil })
}

// RegisterFactory binds a factory to key. Registering a key twice panics.
func (r *Registry) RegisterFactory(key string, f Factory) {
	if f == nil {
		panic(fmt.Sprintf("resolver: nil factory for %q", key))
	}
	k := Key(key)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.modules[k]; dup {
		panic(fmt.Sprintf("resolver: module %q registered twice", k))
	}
	r.modules[k] = f
}

// Lookup returns the factory registered for key.
func (r *Registry) Lookup(key string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.modules[Key(key)]
	return f, ok
}

// Keys returns the registered keys in lexical order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.modules))
	for k := range r.modules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}
