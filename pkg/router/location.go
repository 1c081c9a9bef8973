package router

import (
	"net/url"
	"path"
	"strings"
)

// Location is an entry in the router's history stack.
type Location struct {
	// Pathname is the URL path, always starting with "/".
	Pathname string

	// Search is the query string including the leading "?", or "".
	Search string

	// Hash is the fragment including the leading "#", or "".
	Hash string

	// State is arbitrary navigation state.
	State any

	// Key uniquely identifies the history entry.
	Key string
}

// ParsePath splits a path into pathname, search and hash without
// re-encoding any component.
func ParsePath(p string) Location {
	var loc Location
	if i := strings.IndexByte(p, '#'); i >= 0 {
		loc.Hash = p[i:]
		p = p[:i]
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		loc.Search = p[i:]
		p = p[:i]
	}
	if loc.Search == "?" {
		loc.Search = ""
	}
	if loc.Hash == "#" {
		loc.Hash = ""
	}
	if p == "" {
		p = "/"
	}
	loc.Pathname = p
	return loc
}

// String returns pathname + search + hash.
func (l Location) String() string {
	return l.Pathname + l.Search + l.Hash
}

// RawQuery returns the search string without the leading "?".
func (l Location) RawQuery() string {
	return strings.TrimPrefix(l.Search, "?")
}

// Fragment returns the hash without the leading "#".
func (l Location) Fragment() string {
	return strings.TrimPrefix(l.Hash, "#")
}

// Query parses the search string.
func (l Location) Query() url.Values {
	q, _ := url.ParseQuery(l.RawQuery())
	return q
}

// resolveTo resolves a navigation target against the current location.
// Absolute paths replace the pathname, "?..." and "#..." keep it, and
// relative paths are joined with the current pathname.
func resolveTo(to string, from Location) Location {
	switch {
	case to == "":
		loc := from
		loc.Hash = ""
		return loc
	case strings.HasPrefix(to, "/"):
		return ParsePath(to)
	case strings.HasPrefix(to, "?"):
		loc := ParsePath(from.Pathname + to)
		return loc
	case strings.HasPrefix(to, "#"):
		return ParsePath(from.Pathname + from.Search + to)
	}
	next := ParsePath(to)
	next.Pathname = path.Join(from.Pathname, next.Pathname)
	return next
}

// locationFromURL builds a Location from a request URL. The pathname stays
// escaped, the same form ParsePath produces.
func locationFromURL(u *url.URL) Location {
	loc := Location{Pathname: u.EscapedPath()}
	if loc.Pathname == "" {
		loc.Pathname = "/"
	}
	if u.RawQuery != "" {
		loc.Search = "?" + u.RawQuery
	}
	if u.Fragment != "" {
		loc.Hash = "#" + u.EscapedFragment()
	}
	return loc
}
