package pathpattern

import (
	"regexp"
	"strconv"
	"strings"
)

// WildcardParam is the parameter name under which the first unnamed
// capture (the bare "*" wildcard in particular) is exposed.
const WildcardParam = "pathMatch"

// DefaultDelimiter separates path segments.
const DefaultDelimiter = "/"

// Key describes one parameter of a template.
type Key struct {
	// Name is the parameter name. Unnamed parameters get sequential
	// integer names starting at "0".
	Name string

	// Prefix is the delimiter character preceding the parameter ("/" or "."),
	// or empty.
	Prefix string

	// Delimiter separates repeated values.
	Delimiter string

	// Optional is set by the "?" and "*" modifiers.
	Optional bool

	// Repeat is set by the "+" and "*" modifiers.
	Repeat bool

	// Partial marks a parameter whose prefix is shared with following
	// literal text (e.g. "/:a-b"), so the prefix is kept even when the
	// value is omitted.
	Partial bool

	// Asterisk marks the bare "*" wildcard.
	Asterisk bool

	// Pattern is the regular expression a single value must match.
	Pattern string
}

// Token is either literal text or a parameter.
type Token struct {
	Literal string
	Key     *Key
}

// IsParam reports whether the token is a parameter.
func (t Token) IsParam() bool {
	return t.Key != nil
}

// tokenRE finds escaped characters, named and unnamed parameters, and the
// bare wildcard. Submatches:
//
//	1 escaped character
//	2 prefix
//	3 name
//	4 custom pattern of a named parameter
//	5 pattern of an unnamed group
//	6 modifier
//	7 asterisk
var tokenRE = regexp.MustCompile(
	`(\\.)|([/.])?(?:(?::(\w+)(?:\(((?:\\.|[^\\()])+)\))?|\(((?:\\.|[^\\()])+)\))([+*?])?|(\*))`,
)

// Parse splits a template into literal and parameter tokens.
func Parse(template string, opts Options) []Token {
	delimiter := opts.delimiter()

	var (
		tokens []Token
		key    int
		index  int
		path   strings.Builder
	)

	group := func(m []int, n int) (string, bool) {
		if m[2*n] < 0 {
			return "", false
		}
		return template[m[2*n]:m[2*n+1]], true
	}

	for _, m := range tokenRE.FindAllStringSubmatchIndex(template, -1) {
		path.WriteString(template[index:m[0]])
		index = m[1]

		if escaped, ok := group(m, 1); ok {
			path.WriteString(escaped[1:])
			continue
		}

		prefix, hasPrefix := group(m, 2)
		name, _ := group(m, 3)
		capture, _ := group(m, 4)
		unnamed, _ := group(m, 5)
		modifier, _ := group(m, 6)
		_, asterisk := group(m, 7)

		if path.Len() > 0 {
			tokens = append(tokens, Token{Literal: path.String()})
			path.Reset()
		}

		k := &Key{
			Name:      name,
			Prefix:    prefix,
			Delimiter: delimiter,
			Optional:  modifier == "?" || modifier == "*",
			Repeat:    modifier == "+" || modifier == "*",
			Asterisk:  asterisk,
		}
		if hasPrefix {
			k.Delimiter = prefix
			k.Partial = index < len(template) && template[index:index+1] != prefix
		}
		if k.Name == "" {
			k.Name = strconv.Itoa(key)
			key++
		}

		switch {
		case capture != "":
			k.Pattern = escapeGroup(capture)
		case unnamed != "":
			k.Pattern = escapeGroup(unnamed)
		case asterisk:
			k.Pattern = ".*"
		default:
			k.Pattern = "[^" + escapeString(k.Delimiter) + "]+?"
		}

		tokens = append(tokens, Token{Key: k})
	}

	if index < len(template) {
		path.WriteString(template[index:])
	}
	if path.Len() > 0 {
		tokens = append(tokens, Token{Literal: path.String()})
	}

	return tokens
}

// escapeString escapes regular expression metacharacters in literal text.
func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`.+*?=^!:${}()[]|/\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeGroup escapes characters that would change the meaning of a
// custom parameter pattern, so it cannot open capture groups.
func escapeGroup(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`=!:$/()`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
