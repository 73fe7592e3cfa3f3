package errors

import (
	"bytes"
	"os"
	"regexp"
	"strconv"
)

// Category groups error codes by the part of routectl that reports them.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryRoutes     Category = "routes"
	CategorySource     Category = "source"
	CategoryNavigation Category = "navigation"
	CategoryCLI        Category = "cli"
)

// Location is a position in a config or route-table file. Column is 0
// when unknown.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l *Location) String() string {
	if l == nil {
		return ""
	}
	s := l.File + ":" + strconv.Itoa(l.Line)
	if l.Column > 0 {
		s += ":" + strconv.Itoa(l.Column)
	}
	return s
}

// SourceLine is one numbered line of the file around a Location.
type SourceLine struct {
	Number int
	Text   string
}

// RouteError is a coded error. Code selects a registered template that
// fills Category, Message, Detail and Suggestion.
type RouteError struct {
	Code     string
	Category Category
	Message  string
	Detail   string

	Location *Location
	Context  []SourceLine

	// Suggestion is printed as a hint after the message.
	Suggestion string

	// Routes lists the route paths involved.
	Routes []string

	Wrapped error
}

func (e *RouteError) Error() string {
	msg := e.Message
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code == "" {
		return msg
	}
	return e.Code + ": " + msg
}

func (e *RouteError) Unwrap() error { return e.Wrapped }

// contextRadius is how many lines are shown on each side of a location.
const contextRadius = 2

// WithSource points the error at line and column of file, taking the
// context lines from src.
func (e *RouteError) WithSource(file string, src []byte, line, column int) *RouteError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = sourceContext(src, line)
	return e
}

// WithLocation is WithSource reading the file from disk. A file that
// cannot be read leaves the context empty.
func (e *RouteError) WithLocation(file string, line, column int) *RouteError {
	src, _ := os.ReadFile(file)
	return e.WithSource(file, src, line, column)
}

// decoderLine matches the "line N" fragment yaml.v3 and go-toml put in
// their error messages.
var decoderLine = regexp.MustCompile(`line (\d+)`)

// WithLocationFromError points the error at the line named in a decoder
// error message. Errors without a line number leave it unchanged.
func (e *RouteError) WithLocationFromError(file string, src []byte, err error) *RouteError {
	if err == nil {
		return e
	}
	m := decoderLine.FindStringSubmatch(err.Error())
	if m == nil {
		return e
	}
	if line, convErr := strconv.Atoi(m[1]); convErr == nil && line > 0 {
		e.WithSource(file, src, line, 0)
	}
	return e
}

func (e *RouteError) WithSuggestion(s string) *RouteError {
	e.Suggestion = s
	return e
}

func (e *RouteError) WithDetail(d string) *RouteError {
	e.Detail = d
	return e
}

func (e *RouteError) WithRoutes(paths ...string) *RouteError {
	e.Routes = append(e.Routes, paths...)
	return e
}

func (e *RouteError) Wrap(err error) *RouteError {
	e.Wrapped = err
	return e
}

// sourceContext returns the lines of src within contextRadius of line.
func sourceContext(src []byte, line int) []SourceLine {
	if len(src) == 0 || line < 1 {
		return nil
	}
	lines := bytes.Split(bytes.TrimSuffix(src, []byte("\n")), []byte("\n"))
	first := max(1, line-contextRadius)
	last := min(len(lines), line+contextRadius)

	var out []SourceLine
	for n := first; n <= last; n++ {
		text := string(bytes.TrimSuffix(lines[n-1], []byte("\r")))
		out = append(out, SourceLine{Number: n, Text: text})
	}
	return out
}

// New returns an error for a registered code. An unregistered code keeps
// the code with a generic message.
func New(code string) *RouteError {
	t, ok := registry[code]
	if !ok {
		return &RouteError{Code: code, Message: "unregistered error code"}
	}
	return &RouteError{
		Code:       code,
		Category:   t.Category,
		Message:    t.Message,
		Detail:     t.Detail,
		Suggestion: t.Suggestion,
	}
}
