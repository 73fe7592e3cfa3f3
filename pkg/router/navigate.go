package router

import (
	"github.com/vango-dev/vroute/pkg/query"
)

// NavigateOptions configures one navigation.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Query is merged into the target's query; its keys win.
	Query query.Query

	onComplete []func(*Route)
	onAbort    []func(error)
}

// NavigateOption is a functional option for Navigate, Push and Replace.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithQuery merges q into the target's query.
func WithQuery(q query.Query) NavigateOption {
	return func(o *NavigateOptions) {
		if o.Query == nil {
			o.Query = query.Query{}
		}
		for k, v := range q {
			o.Query[k] = v
		}
	}
}

// OnComplete registers a callback for when the navigation commits.
func OnComplete(fn func(*Route)) NavigateOption {
	return func(o *NavigateOptions) {
		if fn != nil {
			o.onComplete = append(o.onComplete, fn)
		}
	}
}

// OnAbort registers a callback for when the navigation stops without
// committing. It receives a *NavigationError.
func OnAbort(fn func(error)) NavigateOption {
	return func(o *NavigateOptions) {
		if fn != nil {
			o.onAbort = append(o.onAbort, fn)
		}
	}
}

type navigateOptions struct {
	NavigateOptions
	onComplete func(*Route)
	onAbort    func(error)
}

func newNavigateOptions(opts []NavigateOption) navigateOptions {
	var o NavigateOptions
	for _, opt := range opts {
		opt(&o)
	}

	n := navigateOptions{NavigateOptions: o}
	if len(o.onComplete) > 0 {
		cbs := o.onComplete
		n.onComplete = func(r *Route) {
			for _, cb := range cbs {
				cb(r)
			}
		}
	}
	if len(o.onAbort) > 0 {
		cbs := o.onAbort
		n.onAbort = func(err error) {
			for _, cb := range cbs {
				cb(err)
			}
		}
	}
	return n
}

// withQuery overlays q onto the target's query.
func withQuery(to RawLocation, q query.Query) RawLocation {
	if len(q) == 0 || to == nil {
		return to
	}
	loc := to.rawLocation()
	merged := query.Query{}
	for k, v := range loc.Query {
		merged[k] = v
	}
	for k, v := range q {
		merged[k] = v
	}
	loc.Query = merged
	return loc
}

// Navigator is the navigation surface handed to code that should not
// see the whole router.
type Navigator interface {
	// Navigate pushes to (or replaces with WithReplace).
	Navigate(to RawLocation, opts ...NavigateOption)

	// Back navigates back in history.
	Back()

	// Forward navigates forward in history.
	Forward()
}

var _ Navigator = (*Router)(nil)

// Navigate pushes to, or replaces the current entry with WithReplace.
func (r *Router) Navigate(to RawLocation, opts ...NavigateOption) {
	o := newNavigateOptions(opts)
	to = withQuery(to, o.Query)
	if o.Replace {
		r.history.Replace(to, o.onComplete, o.onAbort)
		return
	}
	r.history.Push(to, o.onComplete, o.onAbort)
}
