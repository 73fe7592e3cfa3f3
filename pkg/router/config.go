package router

import (
	"github.com/vango-dev/vroute/pkg/pathpattern"
)

// RouteConfig declares one node of the route tree.
type RouteConfig struct {
	// Path is the path template. Relative paths are joined to the parent's
	// path. An empty path under a parent declares its default child.
	Path string

	// Name identifies the route for named navigation.
	Name string

	// Component is the view rendered in the "default" slot.
	Component Component

	// Components maps named views to components. When set, Component is
	// ignored.
	Components map[string]Component

	// Children are nested routes rendered inside this one.
	Children []RouteConfig

	// Redirect, when set, replaces any navigation matching this route.
	Redirect RedirectFunc

	// Alias lists additional paths that match this route while keeping
	// the route's own record in the matched chain.
	Alias []string

	// BeforeEnter runs when navigating into this route from outside it.
	BeforeEnter Guard

	// Meta is copied onto every route matching this record.
	Meta Meta

	// Props configures the props handed to the default view. For named
	// views use PropsByView.
	Props Props

	// PropsByView configures props per named view.
	PropsByView map[string]Props

	// CaseSensitive overrides PathOptions.Sensitive when non-nil.
	CaseSensitive *bool

	// PathOptions tune how Path compiles.
	PathOptions *pathpattern.Options
}

// RedirectFunc computes the target of a redirecting route. It receives the
// route that would have been produced had the record not redirected.
// A nil result is reported as an invalid redirect.
type RedirectFunc func(to *Route) RawLocation

// RedirectTo returns a RedirectFunc to a fixed target.
func RedirectTo(target RawLocation) RedirectFunc {
	return func(*Route) RawLocation { return target }
}
