package router

import (
	"strings"

	"github.com/vango-dev/vroute/pkg/query"
)

// Route is an immutable snapshot of a resolved navigation target.
// Accessors return copies.
type Route struct {
	name           string
	path           string
	hash           string
	query          query.Query
	params         Params
	fullPath       string
	matched        []*RouteRecord
	meta           Meta
	redirectedFrom string
}

// Start is the route the router reports before its first navigation.
// It is equal only to itself.
var Start = &Route{
	path:     "/",
	fullPath: "/",
	query:    query.Query{},
	params:   Params{},
	meta:     Meta{},
}

func (r *Route) rawLocation() Location {
	if r.name != "" {
		return Location{
			Name:   r.name,
			Params: r.params.Clone(),
			Query:  cloneQuery(r.query),
			Hash:   r.hash,
		}
	}
	return Location{Path: r.path, Query: cloneQuery(r.query), Hash: r.hash}
}

// Name returns the route name, or "".
func (r *Route) Name() string { return r.name }

// Path returns the decoded path without query or hash.
func (r *Route) Path() string { return r.path }

// Hash returns the hash including "#", or "".
func (r *Route) Hash() string { return r.hash }

// FullPath returns path, serialized query and hash.
func (r *Route) FullPath() string { return r.fullPath }

// RedirectedFrom returns the full path of the location that redirected
// here, or "".
func (r *Route) RedirectedFrom() string { return r.redirectedFrom }

// Query returns a copy of the query.
func (r *Route) Query() query.Query { return r.query.Clone() }

// Params returns a copy of the path params.
func (r *Route) Params() Params {
	if r.params == nil {
		return Params{}
	}
	return r.params.Clone()
}

// Param returns one path param.
func (r *Route) Param(name string) string { return r.params[name] }

// Matched returns the matched records, root first. It is empty for an
// unmatched location.
func (r *Route) Matched() []*RouteRecord {
	return append([]*RouteRecord(nil), r.matched...)
}

// Meta returns a copy of the leaf record's metadata.
func (r *Route) Meta() Meta { return r.meta.clone() }

// IsMatched reports whether any record matched.
func (r *Route) IsMatched() bool { return len(r.matched) > 0 }

func (r *Route) String() string { return r.fullPath }

// createRoute builds the snapshot for record (nil when unmatched) and a
// normalized location.
func createRoute(record *RouteRecord, chain []*RouteRecord, loc Location, redirectedFrom *Location, codec query.Codec) *Route {
	if codec == nil {
		codec = query.Standard
	}

	r := &Route{
		name:    loc.Name,
		path:    loc.Path,
		hash:    loc.Hash,
		query:   cloneQuery(loc.Query),
		params:  loc.Params.Clone(),
		matched: chain,
		meta:    Meta{},
	}
	if r.name == "" && record != nil {
		r.name = record.name
	}
	if record != nil {
		r.meta = record.meta.clone()
	}
	if r.path == "" {
		r.path = "/"
	}
	if r.query == nil {
		r.query = query.Query{}
	}
	if r.params == nil {
		r.params = Params{}
	}
	r.fullPath = fullPath(loc, codec)
	if redirectedFrom != nil {
		r.redirectedFrom = fullPath(*redirectedFrom, codec)
	}
	return r
}

func fullPath(loc Location, codec query.Codec) string {
	path := loc.Path
	if path == "" {
		path = "/"
	}
	return path + codec.Stringify(loc.Query) + loc.Hash
}

// IsSameRoute reports whether a and b describe the same navigation
// target. Start is equal only to itself.
func IsSameRoute(a, b *Route) bool {
	if a == nil || b == nil {
		return false
	}
	if a == Start || b == Start {
		return a == b
	}
	switch {
	case a.path != "" && b.path != "":
		return trimTrailingSlash(a.path) == trimTrailingSlash(b.path) &&
			a.hash == b.hash &&
			a.query.Equal(b.query)
	case a.name != "" && b.name != "":
		return a.name == b.name &&
			a.hash == b.hash &&
			a.query.Equal(b.query) &&
			a.params.Equal(b.params)
	}
	return false
}

// IsIncludedRoute reports whether current is target or lies below it:
// current's path starts with target's path on a segment boundary, the
// hash matches when target has one, and every query key of target is
// present on current.
func IsIncludedRoute(current, target *Route) bool {
	if current == nil || target == nil {
		return false
	}
	cur := trimTrailingSlash(current.path) + "/"
	tgt := trimTrailingSlash(target.path) + "/"
	return strings.HasPrefix(cur, tgt) &&
		(target.hash == "" || current.hash == target.hash) &&
		current.query.Includes(target.query)
}

func trimTrailingSlash(path string) string {
	return strings.TrimSuffix(path, "/")
}
