package router

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/vroute/pkg/query"
	"github.com/vango-dev/vroute/pkg/routepath"
)

// maxRedirects bounds redirect chains so a cycle in the route table
// yields an unmatched route instead of unbounded recursion.
const maxRedirects = 32

// Matcher resolves locations against a Registry.
type Matcher struct {
	registry   *Registry
	normalizer Normalizer
	logger     *slog.Logger
}

// NewMatcher returns a matcher over registry. A nil codec uses
// query.Standard; a nil logger uses slog.Default.
func NewMatcher(registry *Registry, codec query.Codec, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default().With("component", "matcher")
	}
	if codec == nil {
		codec = query.Standard
	}
	return &Matcher{
		registry:   registry,
		normalizer: Normalizer{Codec: codec, Logger: logger},
		logger:     logger,
	}
}

// Registry returns the underlying registry.
func (m *Matcher) Registry() *Registry { return m.registry }

// AddRoutes registers more routes.
func (m *Matcher) AddRoutes(routes []RouteConfig) error {
	return m.registry.Add(routes)
}

// Normalize normalizes raw against current using the matcher's codec.
func (m *Matcher) Normalize(raw RawLocation, current *Route, appendPath bool) Location {
	return m.normalizer.Normalize(raw, current, appendPath)
}

// Match resolves raw against current. The result is never nil; a target
// that matches nothing yields a Route with no matched records.
func (m *Matcher) Match(raw RawLocation, current *Route) *Route {
	return m.match(raw, current, nil, 0)
}

func (m *Matcher) match(raw RawLocation, current *Route, redirectedFrom *Location, depth int) *Route {
	loc := m.normalizer.Normalize(raw, current, false)

	if loc.Name != "" {
		rec, ok := m.registry.ByName(loc.Name)
		if !ok {
			logWarning(m.logger, Warning{
				Code:    WarnUnknownName,
				Message: fmt.Sprintf("route with name %q does not exist", loc.Name),
				Name:    loc.Name,
			})
			return m.createRoute(nil, loc, nil, depth)
		}

		if loc.Params == nil {
			loc.Params = Params{}
		}
		if current != nil {
			required := make(map[string]bool)
			for _, k := range rec.pattern.Keys() {
				if !k.Optional {
					required[k.Name] = true
				}
			}
			for k, v := range current.params {
				if _, ok := loc.Params[k]; !ok && required[k] {
					loc.Params[k] = v
				}
			}
		}

		loc.Path = fillParams(m.logger, rec.path, loc.Params, fmt.Sprintf("named route %q", loc.Name))
		return m.createRoute(rec, loc, redirectedFrom, depth)
	}

	if loc.Path != "" {
		for _, p := range m.registry.PathList() {
			rec, ok := m.registry.ByPath(p)
			if !ok {
				continue
			}
			if params, ok := rec.pattern.Match(loc.Path); ok {
				loc.Params = params
				return m.createRoute(rec, loc, redirectedFrom, depth)
			}
		}
		loc.Params = Params{}
	}

	return m.createRoute(nil, loc, nil, depth)
}

func (m *Matcher) createRoute(rec *RouteRecord, loc Location, redirectedFrom *Location, depth int) *Route {
	if rec != nil && rec.redirect != nil {
		from := loc
		if redirectedFrom != nil {
			from = *redirectedFrom
		}
		return m.redirect(rec, from, depth)
	}
	if rec != nil && rec.matchAs != "" {
		return m.alias(rec, loc, depth)
	}
	return createRoute(rec, m.registry.Chain(rec), loc, redirectedFrom, m.normalizer.Codec)
}

func (m *Matcher) unmatched(loc Location) *Route {
	return createRoute(nil, nil, loc, nil, m.normalizer.Codec)
}

func (m *Matcher) redirect(rec *RouteRecord, loc Location, depth int) *Route {
	if depth >= maxRedirects {
		logWarning(m.logger, Warning{
			Code:    WarnRedirectLoop,
			Message: fmt.Sprintf("redirect chain from %q exceeds %d steps", loc.Path, maxRedirects),
			Path:    rec.path,
		})
		return m.unmatched(loc)
	}

	would := createRoute(rec, m.registry.Chain(rec), loc, nil, m.normalizer.Codec)
	raw := rec.redirect(would)
	if raw == nil {
		logWarning(m.logger, Warning{
			Code:    WarnInvalidRedirect,
			Message: "invalid redirect option: nil",
			Path:    rec.path,
		})
		return m.unmatched(loc)
	}

	target := raw.rawLocation()
	q, hash, params := loc.Query, loc.Hash, loc.Params
	if target.Query != nil {
		q = target.Query
	}
	if target.Hash != "" {
		hash = target.Hash
	}
	if target.Params != nil {
		params = target.Params
	}

	switch {
	case target.Name != "":
		if _, ok := m.registry.ByName(target.Name); !ok {
			logWarning(m.logger, Warning{
				Code:    WarnInvalidRedirect,
				Message: fmt.Sprintf("redirect failed: named route %q not found", target.Name),
				Path:    rec.path,
				Name:    target.Name,
			})
		}
		next := Location{Name: target.Name, Query: q, Hash: hash, Params: params, normalized: true}
		return m.match(next, nil, &loc, depth+1)

	case target.Path != "":
		parent := "/"
		if p, ok := m.registry.Record(rec.parent); ok {
			parent = p.path
		}
		rawPath := routepath.Resolve(target.Path, parent, true)
		resolved := fillParams(m.logger, rawPath, params, fmt.Sprintf("redirect route with path %q", rawPath))
		next := Location{Path: resolved, Query: q, Hash: hash, normalized: true}
		return m.match(next, nil, &loc, depth+1)
	}

	logWarning(m.logger, Warning{
		Code:    WarnInvalidRedirect,
		Message: fmt.Sprintf("invalid redirect option: %+v", target),
		Path:    rec.path,
	})
	return m.unmatched(loc)
}

func (m *Matcher) alias(rec *RouteRecord, loc Location, depth int) *Route {
	if depth >= maxRedirects {
		logWarning(m.logger, Warning{
			Code:    WarnRedirectLoop,
			Message: fmt.Sprintf("alias chain from %q exceeds %d steps", loc.Path, maxRedirects),
			Path:    rec.path,
		})
		return m.unmatched(loc)
	}
	aliasedPath := fillParams(m.logger, rec.matchAs, loc.Params, fmt.Sprintf("aliased route with path %q", rec.matchAs))
	aliased := m.match(Location{Path: aliasedPath, normalized: true}, nil, nil, depth+1)
	if len(aliased.matched) == 0 {
		return m.unmatched(loc)
	}
	real := aliased.matched[len(aliased.matched)-1]
	loc.Params = aliased.params.Clone()
	return createRoute(real, m.registry.Chain(real), loc, nil, m.normalizer.Codec)
}
