// Package routepath checks and canonicalizes navigation paths before they
// reach the router.
package routepath

import (
	"errors"
	"strings"
)

// Path errors.
var (
	ErrAbsoluteURL          = errors.New("absolute URL, expected a path")
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
)

// Clean canonicalizes a pathname: it adds a leading slash, collapses
// repeated slashes, resolves "." and ".." segments and drops a trailing
// slash. Percent escapes are validated but never decoded or re-encoded.
//
// Backslashes, NUL bytes (literal or %00), malformed escapes and ".."
// segments that climb above the root are rejected.
func Clean(pathname string) (string, error) {
	if strings.Contains(pathname, `\`) {
		return "", ErrBackslashInPath
	}
	if strings.Contains(pathname, "\x00") || strings.Contains(strings.ToUpper(pathname), "%00") {
		return "", ErrNullByteInPath
	}
	if err := validateEscapes(pathname); err != nil {
		return "", err
	}

	var kept []string
	for _, seg := range strings.Split(pathname, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(kept) == 0 {
				return "", ErrPathEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}
	return "/" + strings.Join(kept, "/"), nil
}

// CheckTarget rejects navigation targets that are not app-relative:
// absolute and protocol-relative URLs.
func CheckTarget(target string) error {
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(target, "//") {
		return ErrAbsoluteURL
	}
	return nil
}

func validateEscapes(p string) error {
	for i := 0; i < len(p); i++ {
		if p[i] != '%' {
			continue
		}
		if i+2 >= len(p) || !isHex(p[i+1]) || !isHex(p[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
