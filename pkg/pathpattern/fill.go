package pathpattern

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingParameter is returned when a required parameter has no value.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrTypeMismatch is returned when a sequence is supplied for a
	// non-repeating parameter, or a single value for a repeating one.
	ErrTypeMismatch = errors.New("parameter type mismatch")

	// ErrEmptyRepeat is returned when an empty sequence is supplied for a
	// required repeating parameter.
	ErrEmptyRepeat = errors.New("empty repeated parameter")

	// ErrParameterPatternMismatch is returned when an encoded value does
	// not match the parameter's pattern.
	ErrParameterPatternMismatch = errors.New("parameter does not match pattern")

	// ErrNotFillable is returned by Fill on patterns built from several
	// templates or from a raw expression.
	ErrNotFillable = errors.New("pattern cannot be filled")
)

// FillError describes why a parameter could not be substituted.
type FillError struct {
	Param string
	Value string
	Err   error
}

func (e *FillError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("pathpattern: %s: %q: %v", e.Param, e.Value, e.Err)
	}
	return fmt.Sprintf("pathpattern: %s: %v", e.Param, e.Err)
}

func (e *FillError) Unwrap() error { return e.Err }

// Fill substitutes params into the template. Values are string, []string
// (repeating parameters only) or anything formattable with %v. Values are
// percent-encoded in "pretty" form: only characters that would break the
// path are escaped, and "/" survives inside wildcard values.
//
// A missing optional parameter is omitted; the parameter named "0" may be
// supplied as WildcardParam.
func (p *Pattern) Fill(params map[string]any) (string, error) {
	if !p.fillable {
		return "", &FillError{Param: p.source, Err: ErrNotFillable}
	}

	var b strings.Builder
	for i, tok := range p.tokens {
		if !tok.IsParam() {
			b.WriteString(tok.Literal)
			continue
		}

		k := tok.Key
		value, ok := lookup(params, k.Name)
		if !ok {
			if k.Optional {
				if k.Partial {
					b.WriteString(k.Prefix)
				}
				continue
			}
			return "", &FillError{Param: k.Name, Err: ErrMissingParameter}
		}

		if values, isSeq := value.([]string); isSeq {
			if !k.Repeat {
				return "", &FillError{Param: k.Name, Value: strings.Join(values, ","), Err: ErrTypeMismatch}
			}
			if len(values) == 0 {
				if k.Optional {
					continue
				}
				return "", &FillError{Param: k.Name, Err: ErrEmptyRepeat}
			}
			for j, v := range values {
				seg := encodePretty(v)
				if ok, _ := p.checks[i].MatchString(seg); !ok {
					return "", &FillError{Param: k.Name, Value: seg, Err: ErrParameterPatternMismatch}
				}
				if j == 0 {
					b.WriteString(k.Prefix)
				} else {
					b.WriteString(k.Delimiter)
				}
				b.WriteString(seg)
			}
			continue
		}

		if k.Repeat {
			return "", &FillError{Param: k.Name, Value: fmt.Sprint(value), Err: ErrTypeMismatch}
		}

		s := fmt.Sprint(value)
		var seg string
		if k.Asterisk {
			seg = encodeAsterisk(s)
		} else {
			seg = encodePretty(s)
		}
		if ok, _ := p.checks[i].MatchString(seg); !ok {
			return "", &FillError{Param: k.Name, Value: seg, Err: ErrParameterPatternMismatch}
		}
		b.WriteString(k.Prefix)
		b.WriteString(seg)
	}

	return b.String(), nil
}

// FillStrings fills from flat string params, as produced by Match. The
// value of a repeating parameter is split on its delimiter first, so a
// matched path can be filled again unchanged.
func (p *Pattern) FillStrings(params map[string]string) (string, error) {
	in := make(map[string]any, len(params))
	for k, v := range params {
		in[k] = v
	}
	for _, k := range p.keys {
		if !k.Repeat {
			continue
		}
		name := k.Name
		v, ok := params[name]
		if !ok && name == "0" {
			name = WildcardParam
			v, ok = params[name]
		}
		if !ok {
			continue
		}
		if v == "" {
			in[name] = []string{}
		} else {
			in[name] = strings.Split(v, k.Delimiter)
		}
	}
	return p.Fill(in)
}

func lookup(params map[string]any, name string) (any, bool) {
	v, ok := params[name]
	if (!ok || v == nil) && name == "0" {
		v, ok = params[WildcardParam]
	}
	if v == nil {
		return nil, false
	}
	return v, ok
}

const upperhex = "0123456789ABCDEF"

// encodePretty escapes like encodeURI, plus "/", "?" and "#".
func encodePretty(s string) string {
	return encode(s, ";,:@&=+$-_.!~*'()")
}

// encodeAsterisk escapes like encodeURI, plus "?" and "#".
func encodeAsterisk(s string) string {
	return encode(s, ";,/:@&=+$-_.!~*'()")
}

func encode(s, keep string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) || (c < 0x80 && strings.IndexByte(keep, c) >= 0) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}
