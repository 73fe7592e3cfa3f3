// Package routepath provides the string-level path helpers used by route
// locations: splitting a raw path into path, query and hash, resolving
// relative paths, and validating paths that arrive from untrusted peers.
package routepath

import (
	"errors"
	"strings"
)

// Path validation errors.
var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
)

// Parsed is a raw path split into its parts.
type Parsed struct {
	// Path is everything before the query and hash.
	Path string

	// Query is the raw query string without the leading "?".
	Query string

	// Hash includes the leading "#", or is empty.
	Hash string
}

// Parse splits input into path, query and hash. The hash is split off
// first, so a "?" inside the hash belongs to the hash.
func Parse(input string) Parsed {
	var p Parsed
	if i := strings.IndexByte(input, '#'); i >= 0 {
		p.Hash = input[i:]
		input = input[:i]
	}
	if i := strings.IndexByte(input, '?'); i >= 0 {
		p.Query = input[i+1:]
		input = input[:i]
	}
	p.Path = input
	return p
}

// Resolve resolves relative against base.
//
// An absolute relative path is returned unchanged. A path starting with
// "?" or "#" is appended to base. Otherwise the last segment of base is
// dropped (unless appendPath is set and base does not end with "/"), and
// the segments of relative are applied with "." and ".." handled.
func Resolve(relative, base string, appendPath bool) string {
	if relative == "" {
		return base
	}
	switch relative[0] {
	case '/':
		return relative
	case '?', '#':
		return base + relative
	}

	stack := strings.Split(base, "/")
	if !appendPath || stack[len(stack)-1] == "" {
		stack = stack[:len(stack)-1]
	}

	for _, seg := range strings.Split(strings.TrimPrefix(relative, "/"), "/") {
		switch seg {
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ".":
		default:
			stack = append(stack, seg)
		}
	}

	if len(stack) == 0 || stack[0] != "" {
		stack = append([]string{""}, stack...)
	}
	return strings.Join(stack, "/")
}

// Clean collapses every "//" into "/".
func Clean(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return path
}

// ValidateNavPath checks a path reported by a remote peer before it is
// navigated to. It must be a relative URL starting with "/" and carry no
// backslash, NUL byte or malformed percent escape. Query and hash are
// kept as given.
func ValidateNavPath(input string) (string, error) {
	if strings.HasPrefix(input, "//") || strings.Contains(input, "://") {
		return "", ErrInvalidPath
	}
	if !strings.HasPrefix(input, "/") {
		return "", ErrInvalidPath
	}

	p := Parse(input)
	if strings.Contains(p.Path, "\\") {
		return "", ErrBackslashInPath
	}
	if strings.Contains(input, "\x00") || strings.Contains(strings.ToUpper(input), "%00") {
		return "", ErrNullByteInPath
	}
	if strings.Contains(input, "%") {
		if err := validatePercentEscapes(p.Path + p.Query); err != nil {
			return "", err
		}
	}
	return input, nil
}

// validatePercentEscapes checks that every "%" starts a %XX escape.
func validatePercentEscapes(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		if i+2 >= len(s) || !isHexDigit(s[i+1]) || !isHexDigit(s[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
