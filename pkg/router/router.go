package router

import (
	"context"
	"log/slog"

	"github.com/vango-dev/vroute/pkg/routepath"
)

// Router assembles a Registry, a Matcher, an Engine and a History into
// the navigation API.
type Router struct {
	registry *Registry
	matcher  *Matcher
	engine   *Engine
	history  History
	base     string
	mode     Mode
	logger   *slog.Logger
}

// New builds a router over routes. It fails only when a path template
// does not compile.
func New(routes []RouteConfig, opts ...Option) (*Router, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	registry, err := BuildRegistry(routes, o.logger.With("component", "registry"))
	if err != nil {
		return nil, err
	}
	matcher := NewMatcher(registry, o.codec, o.logger.With("component", "matcher"))
	engine := newEngine(matcher, o)

	history := o.history
	if history == nil {
		history = NewMemoryHistory()
	}
	history.Bind(engine)
	engine.history = history

	return &Router{
		registry: registry,
		matcher:  matcher,
		engine:   engine,
		history:  history,
		base:     o.base,
		mode:     o.mode,
		logger:   o.logger,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(routes []RouteConfig, opts ...Option) *Router {
	r, err := New(routes, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Registry returns the route table.
func (r *Router) Registry() *Registry { return r.registry }

// Engine returns the transition engine.
func (r *Router) Engine() *Engine { return r.engine }

// History returns the history backend.
func (r *Router) History() History { return r.history }

// Mode returns the href mode.
func (r *Router) Mode() Mode { return r.mode }

// CurrentRoute returns the last committed route, Start before the first
// navigation.
func (r *Router) CurrentRoute() *Route { return r.engine.Current() }

// Start runs the initial navigation to the history's current location.
func (r *Router) Start(opts ...NavigateOption) {
	o := newNavigateOptions(opts)
	r.engine.TransitionTo(Path(r.history.CurrentLocation()), o.onComplete, o.onAbort)
}

// Match resolves raw against the current route without navigating.
func (r *Router) Match(raw RawLocation) *Route {
	return r.matcher.Match(raw, r.engine.Current())
}

// Push navigates to to and adds a history entry.
func (r *Router) Push(to RawLocation, opts ...NavigateOption) {
	o := newNavigateOptions(opts)
	r.history.Push(withQuery(to, o.Query), o.onComplete, o.onAbort)
}

// Replace navigates to to and replaces the current history entry.
func (r *Router) Replace(to RawLocation, opts ...NavigateOption) {
	o := newNavigateOptions(opts)
	r.history.Replace(withQuery(to, o.Query), o.onComplete, o.onAbort)
}

// Go moves n entries through the history.
func (r *Router) Go(n int) { r.history.Go(n) }

// Back is Go(-1).
func (r *Router) Back() { r.Go(-1) }

// Forward is Go(1).
func (r *Router) Forward() { r.Go(1) }

// Resolved is the result of Resolve.
type Resolved struct {
	Location Location
	Route    *Route
	Href     string
}

// Resolve computes where to would lead from current (the current route
// when nil) without navigating.
func (r *Router) Resolve(to RawLocation, current *Route, appendPath bool) Resolved {
	if current == nil {
		current = r.engine.Current()
	}
	loc := r.matcher.Normalize(to, current, appendPath)
	route := r.matcher.Match(loc, current)

	full := route.redirectedFrom
	if full == "" {
		full = route.fullPath
	}
	return Resolved{Location: loc, Route: route, Href: r.createHref(full)}
}

func (r *Router) createHref(fullPath string) string {
	path := fullPath
	if r.mode == ModeHash {
		path = "#" + fullPath
	}
	if r.base == "" {
		return path
	}
	return routepath.Clean(r.base + "/" + path)
}

// AddRoutes registers more routes. If the router has already navigated,
// the current location is matched again so the new routes take effect.
func (r *Router) AddRoutes(routes []RouteConfig) error {
	if err := r.matcher.AddRoutes(routes); err != nil {
		return err
	}
	if r.engine.Current() != Start {
		r.engine.TransitionTo(Path(r.history.CurrentLocation()), nil, nil)
	}
	return nil
}

// MatchedComponents returns the components of every matched record of
// to, or of the current route when to is nil.
func (r *Router) MatchedComponents(to RawLocation) []Component {
	var route *Route
	switch t := to.(type) {
	case nil:
		route = r.engine.Current()
	case *Route:
		route = t
	default:
		route = r.Resolve(to, nil, false).Route
	}

	var out []Component
	for _, rec := range route.matched {
		out = append(out, rec.Components()...)
	}
	return out
}

// BeforeEach registers a global guard. See Engine.BeforeEach.
func (r *Router) BeforeEach(g Guard) func() { return r.engine.BeforeEach(g) }

// BeforeResolve registers a global resolve guard. See Engine.BeforeResolve.
func (r *Router) BeforeResolve(g Guard) func() { return r.engine.BeforeResolve(g) }

// AfterEach registers a global after hook.
func (r *Router) AfterEach(h AfterHook) func() { return r.engine.AfterEach(h) }

// Listen registers a callback for every committed route.
func (r *Router) Listen(cb func(*Route)) func() { return r.engine.Listen(cb) }

// OnReady calls cb once the initial navigation commits; errCb when it
// fails.
func (r *Router) OnReady(cb func(*Route), errCb func(error)) { r.engine.OnReady(cb, errCb) }

// OnError registers a handler for failed navigations.
func (r *Router) OnError(cb func(error)) func() { return r.engine.OnError(cb) }

// NavigateWait navigates and blocks until the navigation commits or
// stops, or ctx is done. A navigation that a guard redirects reports the
// redirect as a *NavigationError with Reason Redirected.
func (r *Router) NavigateWait(ctx context.Context, to RawLocation, opts ...NavigateOption) (*Route, error) {
	type result struct {
		route *Route
		err   error
	}
	ch := make(chan result, 1)

	opts = append(opts,
		OnComplete(func(route *Route) { ch <- result{route: route} }),
		OnAbort(func(err error) { ch <- result{err: err} }),
	)
	r.Navigate(to, opts...)

	select {
	case res := <-ch:
		return res.route, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
