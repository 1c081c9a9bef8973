package resolver

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the module source extensions, in probe order.
var DefaultExtensions = []string{".go", ".templ"}

// RouteConfigExtensions are the route config extensions, in probe order.
var RouteConfigExtensions = []string{".yaml", ".yml", ".json", ".toml"}

// Finder probes a filesystem for a base name with each extension in turn.
type Finder struct {
	FS         fs.FS
	Extensions []string
}

// Find returns the first base+ext that exists as a regular file.
func (f Finder) Find(base string) (string, bool) {
	base = cleanRel(base)
	exts := f.Extensions
	if exts == nil {
		exts = DefaultExtensions
	}
	for _, ext := range exts {
		name := base + ext
		if exists(f.FS, name) {
			return name, true
		}
	}
	return "", false
}

// Exists reports whether name is a regular file on the finder's filesystem.
func (f Finder) Exists(name string) bool {
	return exists(f.FS, cleanRel(name))
}

// FindFile probes root for base with each of exts. The result is relative
// to root and slash separated.
func FindFile(root, base string, exts []string) (string, bool) {
	return Finder{FS: os.DirFS(root), Extensions: exts}.Find(base)
}

// Abs joins a slash-separated relative path onto root.
func Abs(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// Key returns the registry key for a module file: the cleaned
// slash-separated path without its extension.
func Key(file string) string {
	file = cleanRel(file)
	return strings.TrimSuffix(file, path.Ext(file))
}

// HasExt reports whether file ends in one of exts.
func HasExt(file string, exts []string) bool {
	ext := path.Ext(file)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func exists(fsys fs.FS, name string) bool {
	if fsys == nil || !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}

// cleanRel converts p into an fs.FS-style path.
func cleanRel(p string) string {
	p = path.Clean("/" + filepath.ToSlash(p))
	return strings.TrimPrefix(p, "/")
}
