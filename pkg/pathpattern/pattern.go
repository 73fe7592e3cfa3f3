package pathpattern

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
)

// Options control how a template compiles.
type Options struct {
	// Sensitive makes matching case sensitive.
	Sensitive bool `json:"sensitive,omitempty" yaml:"sensitive,omitempty" toml:"sensitive,omitempty"`

	// Strict disallows the optional trailing delimiter.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty" toml:"strict,omitempty"`

	// End anchors the pattern at the end of the input. Nil means true.
	End *bool `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty"`

	// Delimiter separates segments. Empty means "/".
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty" toml:"delimiter,omitempty"`
}

func (o Options) delimiter() string {
	if o.Delimiter == "" {
		return DefaultDelimiter
	}
	return o.Delimiter
}

func (o Options) end() bool {
	return o.End == nil || *o.End
}

// cacheKey is the comparable form of a template plus its options.
type cacheKey struct {
	template  string
	sensitive bool
	strict    bool
	end       bool
	delimiter string
}

func (o Options) key(template string) cacheKey {
	return cacheKey{
		template:  template,
		sensitive: o.Sensitive,
		strict:    o.Strict,
		end:       o.end(),
		delimiter: o.delimiter(),
	}
}

var cache sync.Map // cacheKey → *Pattern

// Pattern is a compiled template: a matching automaton plus, for string
// templates, a fill function.
type Pattern struct {
	source string
	tokens []Token
	keys   []Key
	groups []int
	re     *regexp2.Regexp

	// checks holds one value validator per token; nil for literals.
	checks   []*regexp2.Regexp
	fillable bool
}

// Compile compiles a template, returning a cached pattern when one exists.
func Compile(template string, opts Options) (*Pattern, error) {
	k := opts.key(template)
	if p, ok := cache.Load(k); ok {
		return p.(*Pattern), nil
	}

	p, err := compile(template, opts)
	if err != nil {
		return nil, err
	}

	actual, _ := cache.LoadOrStore(k, p)
	return actual.(*Pattern), nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(template string, opts Options) *Pattern {
	p, err := Compile(template, opts)
	if err != nil {
		panic(err)
	}
	return p
}

func compile(template string, opts Options) (*Pattern, error) {
	tokens := Parse(template, opts)
	src := tokensToSource(tokens, opts)

	re, err := regexp2.Compile(src, reOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("pathpattern: compile %q: %w", template, err)
	}

	p := &Pattern{
		source:   template,
		tokens:   tokens,
		re:       re,
		checks:   make([]*regexp2.Regexp, len(tokens)),
		fillable: true,
	}
	for i, tok := range tokens {
		if !tok.IsParam() {
			continue
		}
		check, err := regexp2.Compile("^(?:"+tok.Key.Pattern+")$", reOptions(opts))
		if err != nil {
			return nil, fmt.Errorf("pathpattern: parameter %q of %q: %w", tok.Key.Name, template, err)
		}
		p.checks[i] = check
		p.keys = append(p.keys, *tok.Key)
		p.groups = append(p.groups, len(p.keys))
	}
	return p, nil
}

// CompileAll compiles several templates into a single pattern matching
// any of them. The result carries the keys of every template but cannot
// be filled.
func CompileAll(templates []string, opts Options) (*Pattern, error) {
	var (
		parts []string
		keys  []Key
	)
	for _, t := range templates {
		tokens := Parse(t, opts)
		parts = append(parts, tokensToSource(tokens, opts))
		for _, tok := range tokens {
			if tok.IsParam() {
				keys = append(keys, *tok.Key)
			}
		}
	}

	src := "(?:" + strings.Join(parts, "|") + ")"
	re, err := regexp2.Compile(src, reOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("pathpattern: compile %q: %w", templates, err)
	}

	p := &Pattern{source: strings.Join(templates, "|"), keys: keys, re: re}
	for i := range keys {
		p.groups = append(p.groups, i+1)
	}
	return p, nil
}

// FromRegexp wraps a pre-built expression. Every capture group becomes a
// key named by its position ("0", "1", ...). The result cannot be filled.
func FromRegexp(re *regexp2.Regexp) *Pattern {
	p := &Pattern{source: re.String(), re: re}
	for _, n := range re.GetGroupNumbers() {
		if n == 0 {
			continue
		}
		p.keys = append(p.keys, Key{Name: strconv.Itoa(len(p.keys))})
		p.groups = append(p.groups, n)
	}
	return p
}

func reOptions(opts Options) regexp2.RegexOptions {
	o := regexp2.RegexOptions(regexp2.ECMAScript)
	if !opts.Sensitive {
		o |= regexp2.IgnoreCase
	}
	return o
}

func tokensToSource(tokens []Token, opts Options) string {
	var route strings.Builder

	for _, tok := range tokens {
		if !tok.IsParam() {
			route.WriteString(escapeString(tok.Literal))
			continue
		}

		k := tok.Key
		prefix := escapeString(k.Prefix)
		capture := "(?:" + k.Pattern + ")"
		if k.Repeat {
			capture += "(?:" + prefix + capture + ")*"
		}

		switch {
		case k.Optional && !k.Partial:
			capture = "(?:" + prefix + "(" + capture + "))?"
		case k.Optional:
			capture = prefix + "(" + capture + ")?"
		default:
			capture = prefix + "(" + capture + ")"
		}
		route.WriteString(capture)
	}

	src := route.String()
	delimiter := escapeString(opts.delimiter())
	endsWithDelimiter := strings.HasSuffix(src, delimiter)

	if !opts.Strict {
		if endsWithDelimiter {
			src = src[:len(src)-len(delimiter)]
		}
		src += "(?:" + delimiter + "(?=$))?"
	}

	if opts.end() {
		src += "$"
	} else if !(opts.Strict && endsWithDelimiter) {
		src += "(?=" + delimiter + "|$)"
	}

	return "^" + src
}

// Source returns the template the pattern was compiled from.
func (p *Pattern) Source() string { return p.source }

// Expr returns the generated regular expression.
func (p *Pattern) Expr() string { return p.re.String() }

// Tokens returns the parsed tokens of a string template.
func (p *Pattern) Tokens() []Token { return p.tokens }

// Keys returns the parameter keys in declaration order.
func (p *Pattern) Keys() []Key {
	out := make([]Key, len(p.keys))
	copy(out, p.keys)
	return out
}

// Fillable reports whether Fill can be used on this pattern.
func (p *Pattern) Fillable() bool { return p.fillable }

// MatchString reports whether path matches.
func (p *Pattern) MatchString(path string) bool {
	ok, err := p.re.MatchString(path)
	return err == nil && ok
}

// Match matches path and returns the captured parameters. Values are
// percent-decoded; a value that fails to decode is kept raw. Groups that
// did not participate in the match are omitted. The first unnamed key is
// reported as WildcardParam.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	m, err := p.re.FindStringMatch(path)
	if err != nil || m == nil {
		return nil, false
	}

	params := make(map[string]string, len(p.keys))
	for i, k := range p.keys {
		g := m.GroupByNumber(p.groups[i])
		if g == nil || len(g.Captures) == 0 {
			continue
		}
		val := g.String()
		if dec, err := url.PathUnescape(val); err == nil {
			val = dec
		}
		params[ParamName(k.Name)] = val
	}
	return params, true
}

// ParamName maps a key name to the parameter name exposed to callers.
func ParamName(key string) string {
	if key == "0" {
		return WildcardParam
	}
	return key
}
