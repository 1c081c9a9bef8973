package routeconfig

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
)

// moduleExts are the module file extensions discovery recognizes, in
// preference order when a base name has several.
var moduleExts = []string{".go", ".templ"}

var (
	bracketCatchAll = regexp.MustCompile(`^\[\.\.\.(\w+)\]$`)
	bracketParam    = regexp.MustCompile(`^\[(\w+)(?::\w+)?\]$`)
	underCatchAll   = regexp.MustCompile(`^_(\w+?)___$`)
	underParam      = regexp.MustCompile(`^_(\w+?)_$`)
)

const (
	indexName  = "index"
	layoutName = "_layout"
)

// Discover derives route entries from the files under dir:
//
//	index.go          index route of the directory
//	about.go          /about
//	[id].go, _id_.go  /:id
//	[...slug].go      /*slug (also _slug___.go)
//	_layout.go        layout wrapping the directory's routes
//
// A directory without a _layout file contributes its routes to the parent
// with its segment prefixed. Other files starting with "_" and _test.go
// files are skipped, as are files and directories whose path matches one
// of the ignore patterns (path.Match syntax). Entries are ordered index
// first, then by name.
func Discover(fsys fs.FS, dir string, ignore ...string) ([]Entry, error) {
	dir = cleanFile(dir)
	d := discoverer{fsys: fsys, ignore: ignore}
	entries, err := d.dir(dir, "")
	if err != nil {
		return nil, err
	}

	if layout := findLayout(fsys, dir); layout != "" {
		if entries == nil {
			entries = []Entry{}
		}
		return []Entry{{File: layout, Children: entries}}, nil
	}
	return entries, nil
}

type discoverer struct {
	fsys   fs.FS
	ignore []string
}

// dir lists dir. prefix is the path of a layout-less ancestor directory
// whose routes are hoisted into the parent.
func (d discoverer) dir(dir, prefix string) ([]Entry, error) {
	fsys := d.fsys
	des, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("discovering routes in %s: %w", dir, err)
	}

	var index []Entry
	var rest []Entry
	seen := make(map[string]bool)

	for _, de := range des {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := path.Join(dir, name)
		if d.ignored(full) {
			continue
		}

		if de.IsDir() {
			seg, ok := segment(name)
			if !ok {
				continue
			}

			layout := findLayout(fsys, full)
			if layout == "" {
				hoisted, err := d.dir(full, joinSegments(prefix, seg))
				if err != nil {
					return nil, err
				}
				rest = append(rest, hoisted...)
				continue
			}

			children, err := d.dir(full, "")
			if err != nil {
				return nil, err
			}
			if children == nil {
				children = []Entry{}
			}
			rest = append(rest, Entry{Path: joinSegments(prefix, seg), File: layout, Children: children})
			continue
		}

		base, ok := moduleBase(name)
		if !ok || seen[base] {
			continue
		}
		seen[base] = true

		if base == indexName {
			if prefix == "" {
				index = append(index, Entry{File: full, Index: true})
			} else {
				index = append(index, Entry{Path: prefix, File: full})
			}
			continue
		}

		seg, ok := segment(base)
		if !ok {
			continue
		}
		rest = append(rest, Entry{Path: joinSegments(prefix, seg), File: full})
	}

	return append(index, rest...), nil
}

func (d discoverer) ignored(name string) bool {
	for _, p := range d.ignore {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

// findLayout returns the layout module file in dir, or "".
func findLayout(fsys fs.FS, dir string) string {
	for _, ext := range moduleExts {
		name := path.Join(dir, layoutName+ext)
		info, err := fs.Stat(fsys, name)
		if err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}

// moduleBase returns a module file's name without extension.
func moduleBase(name string) (string, bool) {
	if strings.HasSuffix(name, "_test.go") {
		return "", false
	}
	ext := path.Ext(name)
	for _, e := range moduleExts {
		if ext == e {
			return strings.TrimSuffix(name, ext), true
		}
	}
	return "", false
}

// segment converts a file or directory name into a path segment:
// [id] and _id_ become :id, [...slug] and _slug___ become *slug.
// Other names starting with "_" are not routes.
func segment(name string) (string, bool) {
	if m := bracketCatchAll.FindStringSubmatch(name); m != nil {
		return "*" + m[1], true
	}
	if m := bracketParam.FindStringSubmatch(name); m != nil {
		return ":" + m[1], true
	}
	if m := underCatchAll.FindStringSubmatch(name); m != nil {
		return "*" + m[1], true
	}
	if m := underParam.FindStringSubmatch(name); m != nil {
		return ":" + m[1], true
	}
	if strings.HasPrefix(name, "_") {
		return "", false
	}
	return name, true
}

func joinSegments(prefix, seg string) string {
	if prefix == "" {
		return seg
	}
	return prefix + "/" + seg
}
