// Package query implements the query string codec used by route
// locations.
//
// A Query maps each key to its values. A nil value slice stands for a
// key that appeared without "=" and is rendered bare ("?flag"). An empty
// non-nil slice is omitted when stringified.
//
// A bare key only survives when it is the key's first occurrence and no
// occurrence carries a value. Repeats of a bare key are not counted, so
// "?a&a" parses like "?a", and "?a=1&a" or "?a&a=1" parse like "?a=1".
//
// Keys are stringified in sorted order so that the same query always
// produces the same full path.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

// Query is a decoded query string.
type Query map[string][]string

// ErrMalformed is returned when a component is not valid percent-encoded
// UTF-8.
var ErrMalformed = errors.New("malformed query component")

// Codec parses and stringifies queries. Routers accept a custom Codec in
// place of Standard.
type Codec interface {
	Parse(raw string) (Query, error)
	Stringify(q Query) string
}

// Standard is the default Codec.
var Standard Codec = standardCodec{}

type standardCodec struct{}

func (standardCodec) Parse(raw string) (Query, error) { return Parse(raw) }
func (standardCodec) Stringify(q Query) string        { return Stringify(q) }

// Get returns the first value for key, or "".
func (q Query) Get(key string) string {
	if vs := q[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Has reports whether key is present, bare or with values.
func (q Query) Has(key string) bool {
	_, ok := q[key]
	return ok
}

// Clone returns a deep copy. Bare keys stay bare.
func (q Query) Clone() Query {
	out := make(Query, len(q))
	for k, vs := range q {
		if vs == nil {
			out[k] = nil
			continue
		}
		out[k] = append([]string{}, vs...)
	}
	return out
}

// Equal reports whether q and other have the same keys and values. A nil
// and an empty Query are equal.
func (q Query) Equal(other Query) bool {
	if len(q) != len(other) {
		return false
	}
	for k, a := range q {
		b, ok := other[k]
		if !ok || (a == nil) != (b == nil) || len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

// Includes reports whether every key of target is present in q. Values
// are not compared.
func (q Query) Includes(target Query) bool {
	for k := range target {
		if _, ok := q[k]; !ok {
			return false
		}
	}
	return true
}

// Parse decodes a raw query string. Surrounding whitespace and one
// leading "?", "#" or "&" are ignored. "+" decodes to a space. A key seen
// more than once accumulates values; a bare occurrence of a key that also
// has values is dropped.
//
// On a malformed component Parse returns an empty Query and an error
// wrapping ErrMalformed.
func Parse(raw string) (Query, error) {
	res := Query{}
	raw = strings.TrimSpace(raw)
	if raw != "" && strings.ContainsRune("?#&", rune(raw[0])) {
		raw = raw[1:]
	}
	if raw == "" {
		return res, nil
	}

	for _, param := range strings.Split(raw, "&") {
		param = strings.ReplaceAll(param, "+", " ")
		rawKey, rawVal, hasVal := strings.Cut(param, "=")

		key, err := Decode(rawKey)
		if err != nil {
			return Query{}, err
		}
		if !hasVal {
			if _, seen := res[key]; !seen {
				res[key] = nil
			}
			continue
		}

		val, err := Decode(rawVal)
		if err != nil {
			return Query{}, err
		}
		res[key] = append(res[key], val)
	}
	return res, nil
}

// Stringify renders q as "?k=v&..." with keys sorted, or "" when nothing
// would be rendered.
func Stringify(q Query) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		vs := q[k]
		if vs == nil {
			parts = append(parts, Encode(k))
			continue
		}
		for _, v := range vs {
			parts = append(parts, Encode(k)+"="+Encode(v))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

// Resolve parses raw with codec (Standard when nil) and overlays extra.
// When parsing fails the parsed part is empty, extra is still applied, and
// the parse error is returned alongside the result.
func Resolve(raw string, extra Query, codec Codec) (Query, error) {
	if codec == nil {
		codec = Standard
	}
	parsed, err := codec.Parse(raw)
	if err != nil || parsed == nil {
		parsed = Query{}
	}
	for k, vs := range extra {
		if vs == nil {
			parsed[k] = nil
			continue
		}
		parsed[k] = append([]string{}, vs...)
	}
	return parsed, err
}

const upperhex = "0123456789ABCDEF"

// Encode percent-encodes s for use as a query key or value. Letters,
// digits and "-_.~," are kept; everything else is escaped with uppercase
// hex.
func Encode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
			c == '-' || c == '_' || c == '.' || c == '~' || c == ',' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

// Decode reverses percent-encoding. "+" is not special here.
func Decode(s string) (string, error) {
	out, err := url.PathUnescape(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if !utf8.ValidString(out) {
		return "", fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return out, nil
}
