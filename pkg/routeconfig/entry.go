// Package routeconfig reads an application's declarative route config.
//
// A route config lists the app's routes as a tree of entries, each naming
// the module file that implements it:
//
//	routes:
//	  - file: routes/home.go
//	    index: true
//	  - path: products
//	    file: routes/products.go
//	    children:
//	      - file: routes/products.index.go
//	        index: true
//	      - path: ":id"
//	        file: routes/products.$id.go
//
// Apps that opt into flat routes skip the config file; Discover derives
// the same tree from the routes directory.
package routeconfig

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Entry describes one route.
type Entry struct {
	// ID identifies the route. Defaults to File without its extension.
	ID string `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`

	// Path is the URL pattern relative to the parent route.
	Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`

	// File is the module file, relative to the app directory.
	File string `json:"file" yaml:"file" toml:"file"`

	// Index marks a route that matches its parent's path exactly.
	Index bool `json:"index,omitempty" yaml:"index,omitempty" toml:"index,omitempty"`

	// Children are the nested routes, in match order.
	Children []Entry `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// Normalize returns a copy of entries with cleaned file paths and default
// IDs filled in.
func Normalize(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if e.File != "" {
			e.File = cleanFile(e.File)
		}
		if e.ID == "" && e.File != "" {
			e.ID = strings.TrimSuffix(e.File, path.Ext(e.File))
		}
		e.Children = Normalize(e.Children)
		out[i] = e
	}
	return out
}

// Validate checks a normalized tree: every entry names a file, IDs are
// unique, and index entries carry neither children nor a path.
func Validate(entries []Entry) error {
	v := validator{seen: make(map[string]string)}
	v.walk(entries, "")
	return errors.Join(v.errs...)
}

type validator struct {
	seen map[string]string
	errs []error
}

func (v *validator) walk(entries []Entry, parent string) {
	for i, e := range entries {
		where := fmt.Sprintf("%s[%d]", parent, i)
		if e.ID != "" {
			where = fmt.Sprintf("route %q", e.ID)
		}

		if e.File == "" {
			v.errs = append(v.errs, fmt.Errorf("%s: missing file", where))
		}
		if e.ID != "" {
			if prev, dup := v.seen[e.ID]; dup {
				v.errs = append(v.errs, fmt.Errorf("%s: duplicate id (also used by %s)", where, prev))
			} else {
				v.seen[e.ID] = e.File
			}
		}
		if e.Index {
			if len(e.Children) > 0 {
				v.errs = append(v.errs, fmt.Errorf("%s: index routes cannot have children", where))
			}
			if e.Path != "" {
				v.errs = append(v.errs, fmt.Errorf("%s: index routes cannot have a path", where))
			}
		}

		v.walk(e.Children, where+".children")
	}
}

// Walk visits entries depth-first in source order.
func Walk(entries []Entry, fn func(e Entry, depth int)) {
	walk(entries, fn, 0)
}

func walk(entries []Entry, fn func(e Entry, depth int), depth int) {
	for _, e := range entries {
		fn(e, depth)
		walk(e.Children, fn, depth+1)
	}
}

func cleanFile(f string) string {
	f = path.Clean("/" + strings.ReplaceAll(f, "\\", "/"))
	return strings.TrimPrefix(f, "/")
}
