package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vango-dev/testrouter/pkg/router"
)

// Loader resolves a module file, relative to the app directory.
type Loader interface {
	Load(ctx context.Context, file string) (*router.Module, error)
}

// ErrModuleNotFound reports a module file that does not exist.
var ErrModuleNotFound = errors.New("module file not found")

// ErrNotRegistered reports a module file with no registry entry.
var ErrNotRegistered = errors.New("module not registered")

// ModuleLoadError is returned when a module cannot be loaded.
type ModuleLoadError struct {
	File string
	Err  error
}

func (e *ModuleLoadError) Error() string {
	return fmt.Sprintf("loading module %s: %v", e.File, e.Err)
}

func (e *ModuleLoadError) Unwrap() error {
	return e.Err
}

// DefaultCacheSize bounds the number of modules a FileLoader keeps.
const DefaultCacheSize = 512

// FileLoader loads modules whose files exist on FS from a Registry.
type FileLoader struct {
	finder   Finder
	registry *Registry
	cache    *lru.Cache[string, *router.Module]
}

// NewFileLoader creates a loader over the app directory fsys.
func NewFileLoader(fsys fs.FS, reg *Registry) *FileLoader {
	cache, err := lru.New[string, *router.Module](DefaultCacheSize)
	if err != nil {
		panic(err)
	}
	return &FileLoader{
		finder:   Finder{FS: fsys, Extensions: DefaultExtensions},
		registry: reg,
		cache:    cache,
	}
}

// Load implements Loader. A file reference without an extension is probed
// with DefaultExtensions.
func (l *FileLoader) Load(ctx context.Context, file string) (*router.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, ok := l.resolve(file)
	if !ok {
		return nil, &ModuleLoadError{File: file, Err: ErrModuleNotFound}
	}

	key := Key(name)
	if m, ok := l.cache.Get(key); ok {
		return m, nil
	}

	if l.registry == nil {
		return nil, &ModuleLoadError{File: name, Err: ErrNotRegistered}
	}
	factory, ok := l.registry.Lookup(key)
	if !ok {
		return nil, &ModuleLoadError{File: name, Err: ErrNotRegistered}
	}

	m, err := factory()
	if err != nil {
		return nil, &ModuleLoadError{File: name, Err: err}
	}
	if m == nil {
		m = &router.Module{}
	}
	l.cache.Add(key, m)
	return m, nil
}

// Purge drops every cached module.
func (l *FileLoader) Purge() {
	l.cache.Purge()
}

func (l *FileLoader) resolve(file string) (string, bool) {
	if HasExt(file, l.finder.Extensions) {
		name := cleanRel(file)
		return name, l.finder.Exists(name)
	}
	return l.finder.Find(file)
}

// StubLoader returns an empty module for every file that exists. It lets
// tools materialize a route tree without the application's code.
type StubLoader struct {
	FS fs.FS
}

// Load implements Loader.
func (l StubLoader) Load(ctx context.Context, file string) (*router.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := Finder{FS: l.FS, Extensions: DefaultExtensions}
	if HasExt(file, DefaultExtensions) {
		if f.Exists(file) {
			return &router.Module{}, nil
		}
	} else if _, ok := f.Find(file); ok {
		return &router.Module{}, nil
	}
	return nil, &ModuleLoadError{File: file, Err: ErrModuleNotFound}
}

// MapLoader is an in-memory Loader keyed by module key. It records every
// load for assertions.
type MapLoader struct {
	mu      sync.Mutex
	Modules map[string]*router.Module
	Errors  map[string]error
	loads   []string
}

// Load implements Loader.
func (l *MapLoader) Load(ctx context.Context, file string) (*router.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := Key(file)

	l.mu.Lock()
	l.loads = append(l.loads, key)
	l.mu.Unlock()

	if err, ok := l.Errors[key]; ok {
		return nil, &ModuleLoadError{File: file, Err: err}
	}
	m, ok := l.Modules[key]
	if !ok {
		return nil, &ModuleLoadError{File: file, Err: ErrModuleNotFound}
	}
	return m, nil
}

// Loads returns the keys loaded so far, in call order.
func (l *MapLoader) Loads() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.loads))
	copy(out, l.loads)
	return out
}
