package router

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/vroute/pkg/pathpattern"
	"github.com/vango-dev/vroute/pkg/query"
	"github.com/vango-dev/vroute/pkg/routepath"
)

// RawLocation is anything that can be navigated to: a Path, a Location
// or a *Route.
type RawLocation interface {
	rawLocation() Location
}

// Path is a raw path string such as "/user/42?tab=info#bio". Relative
// paths resolve against the current route.
type Path string

func (p Path) rawLocation() Location { return Location{Path: string(p)} }

// Location is a structured navigation target. Set either Path or Name;
// a Location with only Params is a relative params navigation that keeps
// the current route and swaps its params.
type Location struct {
	Path   string
	Name   string
	Params Params
	Query  query.Query
	Hash   string

	// Append resolves a relative Path below the current path instead of
	// replacing its last segment.
	Append bool

	// Replace makes a guard redirect to this location replace the
	// current history entry.
	Replace bool

	normalized bool
}

func (l Location) rawLocation() Location { return l }

// Normalized reports whether l was produced by normalization.
func (l Location) Normalized() bool { return l.normalized }

// Normalizer turns raw navigation targets into canonical locations.
type Normalizer struct {
	// Codec parses query strings. Nil means query.Standard.
	Codec query.Codec

	// Logger receives resolution warnings. Nil means slog.Default.
	Logger *slog.Logger
}

func (n *Normalizer) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.Default().With("component", "normalizer")
	}
	return n.Logger
}

// Normalize resolves raw against current. A location that is already
// normalized, or that only names a route, is returned as given; name
// resolution is left to the matcher.
func (n *Normalizer) Normalize(raw RawLocation, current *Route, appendPath bool) Location {
	if raw == nil {
		raw = Path("")
	}
	next := raw.rawLocation()
	if next.normalized || next.Name != "" {
		next.Params = next.Params.Clone()
		next.Query = cloneQuery(next.Query)
		return next
	}

	if next.Path == "" && next.Params != nil && current != nil {
		next.normalized = true
		params := current.params.Clone()
		if params == nil {
			params = Params{}
		}
		for k, v := range next.Params {
			params[k] = v
		}
		next.Query = cloneQuery(next.Query)

		switch {
		case current.name != "":
			next.Name = current.name
			next.Params = params
		case len(current.matched) > 0:
			leaf := current.matched[len(current.matched)-1]
			next.Path = fillParams(n.logger(), leaf.path, params, "path "+current.path)
			next.Params = params
		default:
			logWarning(n.logger(), Warning{
				Code:    WarnRelativeParams,
				Message: "relative params navigation requires a current route",
			})
		}
		return next
	}

	parsed := routepath.Parse(next.Path)
	base := "/"
	if current != nil && current.path != "" {
		base = current.path
	}
	path := base
	if parsed.Path != "" {
		path = routepath.Resolve(parsed.Path, base, appendPath || next.Append)
	}

	q, err := query.Resolve(parsed.Query, next.Query, n.Codec)
	if err != nil {
		logWarning(n.logger(), Warning{
			Code:    WarnMalformedQuery,
			Message: fmt.Sprintf("error decoding query string %q: %v", parsed.Query, err),
			Path:    next.Path,
		})
	}

	hash := next.Hash
	if hash == "" {
		hash = parsed.Hash
	}
	if hash != "" && hash[0] != '#' {
		hash = "#" + hash
	}

	return Location{
		Path:       path,
		Query:      q,
		Hash:       hash,
		Replace:    next.Replace,
		normalized: true,
	}
}

// NormalizeLocation normalizes with the standard codec and default
// logger.
func NormalizeLocation(raw RawLocation, current *Route, appendPath bool) Location {
	var n Normalizer
	return n.Normalize(raw, current, appendPath)
}

// fillParams fills a record path with params. Failures are logged and
// produce "".
func fillParams(logger *slog.Logger, path string, params Params, what string) string {
	p, err := pathpattern.Compile(path, pathpattern.Options{})
	if err == nil {
		var out string
		if out, err = p.FillStrings(params); err == nil {
			return out
		}
	}
	logWarning(logger, Warning{
		Code:    WarnMissingParam,
		Message: fmt.Sprintf("missing param for %s: %v", what, err),
		Path:    path,
	})
	return ""
}

func cloneQuery(q query.Query) query.Query {
	if q == nil {
		return nil
	}
	return q.Clone()
}
