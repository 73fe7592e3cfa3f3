package router

import (
	"sort"

	"github.com/vango-dev/vroute/pkg/pathpattern"
)

// RecordID is the stable handle of a record inside its Registry.
type RecordID int

// NoRecord is the parent handle of top-level records.
const NoRecord RecordID = -1

// DefaultView is the name of the unnamed view.
const DefaultView = "default"

// RouteRecord is one node of the flattened route tree. Records are
// immutable once registered.
type RouteRecord struct {
	id          RecordID
	parent      RecordID
	path        string
	pattern     *pathpattern.Pattern
	name        string
	components  map[string]Component
	views       []string
	matchAs     string
	aliased     bool
	redirect    RedirectFunc
	beforeEnter Guard
	meta        Meta
	props       map[string]Props
}

// ID returns the record's handle.
func (r *RouteRecord) ID() RecordID { return r.id }

// Parent returns the parent record's handle, or NoRecord.
func (r *RouteRecord) Parent() RecordID { return r.parent }

// Path returns the normalized absolute path template.
func (r *RouteRecord) Path() string { return r.path }

// Pattern returns the compiled path template.
func (r *RouteRecord) Pattern() *pathpattern.Pattern { return r.pattern }

// Name returns the route name, or "".
func (r *RouteRecord) Name() string { return r.name }

// MatchAs returns the path of the record this alias record stands for,
// or "" for canonical records.
func (r *RouteRecord) MatchAs() string { return r.matchAs }

// HasRedirect reports whether the record redirects.
func (r *RouteRecord) HasRedirect() bool { return r.redirect != nil }

// BeforeEnter returns the record's enter guard, or nil.
func (r *RouteRecord) BeforeEnter() Guard { return r.beforeEnter }

// Meta returns a copy of the record's metadata.
func (r *RouteRecord) Meta() Meta { return r.meta.clone() }

// Views returns the view names, "default" first and the rest sorted.
func (r *RouteRecord) Views() []string {
	out := make([]string, len(r.views))
	copy(out, r.views)
	return out
}

// Component returns the component of a view. A lazy component that has
// finished loading is returned resolved.
func (r *RouteRecord) Component(view string) (Component, bool) {
	c, ok := r.components[view]
	if !ok {
		return nil, false
	}
	return resolvedComponent(c), true
}

// Components returns the components of every view in Views order.
func (r *RouteRecord) Components() []Component {
	out := make([]Component, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, resolvedComponent(r.components[v]))
	}
	return out
}

// Props returns the props configured for view, derived from route. It
// returns nil when the view has no props configuration.
func (r *RouteRecord) Props(route *Route, view string) map[string]any {
	p, ok := r.props[view]
	if !ok || p == nil {
		return nil
	}
	return p.resolve(route)
}

func viewOrder(components map[string]Component) []string {
	views := make([]string, 0, len(components))
	for name := range components {
		if name != DefaultView {
			views = append(views, name)
		}
	}
	sort.Strings(views)
	if _, ok := components[DefaultView]; ok {
		views = append([]string{DefaultView}, views...)
	}
	return views
}
