package router

// Default classes applied to active links.
const (
	DefaultActiveClass      = "router-link-active"
	DefaultExactActiveClass = "router-link-exact-active"
)

// LinkOptions configure how a link's active state is computed.
type LinkOptions struct {
	// Exact makes the active class require an exact match instead of
	// containment.
	Exact bool

	// Append resolves a relative target below the current path.
	Append bool

	// ActiveClass overrides DefaultActiveClass.
	ActiveClass string

	// ExactActiveClass overrides DefaultExactActiveClass.
	ExactActiveClass string
}

// Link is the resolved state of a navigation link.
type Link struct {
	Href        string
	Route       *Route
	Active      bool
	ExactActive bool
	Classes     []string
}

// Link resolves to for rendering a link from the current route.
func (r *Router) Link(to RawLocation, opts LinkOptions) Link {
	current := r.engine.Current()
	res := r.Resolve(to, current, opts.Append)

	target := res.Route
	if res.Location.Path != "" {
		target = createRoute(nil, nil, res.Location, nil, r.matcher.normalizer.Codec)
	}

	l := Link{Href: res.Href, Route: res.Route}
	l.ExactActive = IsSameRoute(current, target)
	if opts.Exact {
		l.Active = l.ExactActive
	} else {
		l.Active = IsIncludedRoute(current, target)
	}

	activeClass := opts.ActiveClass
	if activeClass == "" {
		activeClass = DefaultActiveClass
	}
	exactClass := opts.ExactActiveClass
	if exactClass == "" {
		exactClass = DefaultExactActiveClass
	}
	if l.Active {
		l.Classes = append(l.Classes, activeClass)
	}
	if l.ExactActive {
		l.Classes = append(l.Classes, exactClass)
	}
	return l
}

// NavLink is Link with an exact match.
func (r *Router) NavLink(to RawLocation) Link {
	return r.Link(to, LinkOptions{Exact: true})
}
