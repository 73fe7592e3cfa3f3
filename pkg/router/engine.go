package router

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/vroute/internal/clock"
)

// DefaultPollInterval is how often an AfterEnter callback retries until
// its view's instance is registered.
const DefaultPollInterval = 16 * time.Millisecond

// Engine owns the current route and runs the guard pipeline for each
// transition. All state is guarded by one mutex that is never held
// while user code runs, so guards may call next from any goroutine.
type Engine struct {
	matcher      *Matcher
	history      History
	instances    Instances
	scheduler    Scheduler
	clock        clock.Clock
	pollInterval time.Duration
	ctx          context.Context
	observers    []Observer
	logger       *slog.Logger

	mu           sync.Mutex
	current      *Route
	pending      *Route
	ready        bool
	readyCbs     []func(*Route)
	readyErrCbs  []func(error)
	errorCbs     hookList[func(error)]
	listeners    hookList[func(*Route)]
	beforeHooks  hookList[Guard]
	resolveHooks hookList[Guard]
	afterHooks   hookList[AfterHook]
}

func newEngine(m *Matcher, o *options) *Engine {
	return &Engine{
		matcher:      m,
		instances:    o.instances,
		scheduler:    o.scheduler,
		clock:        o.clock,
		pollInterval: o.pollInterval,
		ctx:          o.ctx,
		observers:    o.observers,
		logger:       o.logger.With("component", "engine"),
		current:      Start,
	}
}

// Current returns the last committed route.
func (e *Engine) Current() *Route {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Ready reports whether the first navigation has settled.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// Match resolves raw against current.
func (e *Engine) Match(raw RawLocation, current *Route) *Route {
	return e.matcher.Match(raw, current)
}

// TransitionTo resolves raw against the current route and confirms the
// transition. History backends call it for out-of-band navigations.
func (e *Engine) TransitionTo(raw RawLocation, onComplete func(*Route), onAbort func(error)) {
	from := e.Current()
	route := e.matcher.Match(raw, from)
	done := e.observe(route, from)

	e.ConfirmTransition(route, func(route *Route) {
		e.UpdateRoute(route)
		if onComplete != nil {
			onComplete(route)
		}
		e.ensureURL(false)
		e.flushReady(route)
		done(nil)
	}, func(err error) {
		if onAbort != nil {
			onAbort(err)
		}
		if IsNavigationFailure(err, Failed) {
			e.flushReadyError(err)
		}
		done(err)
	})
}

// ConfirmTransition runs the guard pipeline for route and calls exactly
// one of onComplete or onAbort. It does not commit the route; callers
// do that with UpdateRoute.
func (e *Engine) ConfirmTransition(route *Route, onComplete func(*Route), onAbort func(error)) {
	current := e.Current()

	abort := func(reason Reason, err error) {
		nerr := &NavigationError{Reason: reason, From: current, To: route, Err: err}
		if reason == Failed {
			e.reportError(nerr)
		}
		if onAbort != nil {
			onAbort(nerr)
		}
	}

	if IsSameRoute(route, current) && sameLeaf(route, current) {
		e.ensureURL(false)
		abort(Duplicated, nil)
		return
	}

	updated, activated, deactivated := resolveQueue(current.matched, route.matched)

	e.mu.Lock()
	before := e.beforeHooks.snapshot()
	e.mu.Unlock()

	queue := leaveGuards(deactivated, e.instances)
	queue = append(queue, before...)
	queue = append(queue, updateGuards(updated, e.instances)...)
	for _, rec := range activated {
		queue = append(queue, rec.beforeEnter)
	}
	queue = append(queue, resolveLazy(e.ctx, activated))

	e.mu.Lock()
	e.pending = route
	e.mu.Unlock()

	iterate := func(hook Guard, advance func()) {
		if !e.isPending(route) {
			abort(Cancelled, nil)
			return
		}

		var called atomic.Bool
		next := func(res Resolution) {
			if !called.CompareAndSwap(false, true) {
				e.logger.Debug("guard resolved more than once", "to", route.fullPath)
				return
			}
			switch {
			case res.kind == resolveAbort:
				e.ensureURL(true)
				abort(Aborted, nil)
			case res.kind == resolveFail:
				e.ensureURL(true)
				abort(Failed, res.err)
			case res.isRedirect():
				abort(Redirected, nil)
				e.redirect(res)
			default:
				advance()
			}
		}

		defer func() {
			if r := recover(); r != nil {
				if !called.CompareAndSwap(false, true) {
					panic(r)
				}
				err, ok := r.(error)
				if !ok {
					err = &PanicError{Value: r}
				}
				abort(Failed, err)
			}
		}()
		hook(route, current, next)
	}

	runQueue(queue, iterate, func() {
		var (
			postMu sync.Mutex
			post   []func()
		)
		isValid := func() bool { return e.Current() == route }

		var second []Guard
		for _, eg := range enterGuards(activated) {
			second = append(second, e.bindEnterGuard(eg, isValid, func(fn func()) {
				postMu.Lock()
				post = append(post, fn)
				postMu.Unlock()
			}))
		}
		e.mu.Lock()
		second = append(second, e.resolveHooks.snapshot()...)
		e.mu.Unlock()

		runQueue(second, iterate, func() {
			if !e.clearPending(route) {
				abort(Cancelled, nil)
				return
			}
			onComplete(route)

			postMu.Lock()
			cbs := append([]func(){}, post...)
			postMu.Unlock()
			if len(cbs) > 0 {
				e.scheduler.NextTick(func() {
					for _, cb := range cbs {
						cb()
					}
				})
			}
		})
	})
}

// UpdateRoute commits route, then notifies listeners and after hooks.
func (e *Engine) UpdateRoute(route *Route) {
	e.mu.Lock()
	prev := e.current
	e.current = route
	listeners := e.listeners.snapshot()
	after := e.afterHooks.snapshot()
	e.mu.Unlock()

	for _, l := range listeners {
		l(route)
	}
	for _, h := range after {
		if h != nil {
			h(route, prev)
		}
	}
}

// BeforeEach registers a guard that runs for every navigation, after
// leave guards. The returned function unregisters it.
func (e *Engine) BeforeEach(g Guard) func() { return register(e, &e.beforeHooks, g) }

// BeforeResolve registers a guard that runs last, after enter guards and
// lazy component loading.
func (e *Engine) BeforeResolve(g Guard) func() { return register(e, &e.resolveHooks, g) }

// AfterEach registers a hook that runs after every commit.
func (e *Engine) AfterEach(h AfterHook) func() { return register(e, &e.afterHooks, h) }

// Listen registers a callback invoked with every committed route before
// the after hooks.
func (e *Engine) Listen(cb func(*Route)) func() { return register(e, &e.listeners, cb) }

// OnError registers a handler for failed navigations. The handler gets
// a *NavigationError whose Reason is Failed.
func (e *Engine) OnError(cb func(error)) func() { return register(e, &e.errorCbs, cb) }

// OnReady calls cb once the first navigation has committed, or right
// away if it already settled. errCb, if set, is called instead when the
// first navigation fails.
func (e *Engine) OnReady(cb func(*Route), errCb func(error)) {
	e.mu.Lock()
	if e.ready {
		current := e.current
		e.mu.Unlock()
		if cb != nil {
			cb(current)
		}
		return
	}
	if cb != nil {
		e.readyCbs = append(e.readyCbs, cb)
	}
	if errCb != nil {
		e.readyErrCbs = append(e.readyErrCbs, errCb)
	}
	e.mu.Unlock()
}

func (e *Engine) flushReady(route *Route) {
	e.mu.Lock()
	if e.ready {
		e.mu.Unlock()
		return
	}
	e.ready = true
	cbs := e.readyCbs
	e.readyCbs, e.readyErrCbs = nil, nil
	e.mu.Unlock()

	for _, cb := range cbs {
		cb(route)
	}
}

func (e *Engine) flushReadyError(err error) {
	e.mu.Lock()
	if e.ready {
		e.mu.Unlock()
		return
	}
	e.ready = true
	cbs := e.readyErrCbs
	e.readyCbs, e.readyErrCbs = nil, nil
	e.mu.Unlock()

	for _, cb := range cbs {
		cb(err)
	}
}

func (e *Engine) reportError(err *NavigationError) {
	e.mu.Lock()
	cbs := e.errorCbs.snapshot()
	e.mu.Unlock()

	if len(cbs) == 0 {
		e.logger.Error("uncaught error during route navigation",
			"error", err.Err,
			"from", fullPathOf(err.From),
			"to", fullPathOf(err.To))
		return
	}
	for _, cb := range cbs {
		cb(err)
	}
}

func (e *Engine) isPending(route *Route) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending == route
}

func (e *Engine) clearPending(route *Route) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending != route {
		return false
	}
	e.pending = nil
	return true
}

func (e *Engine) ensureURL(push bool) {
	if e.history != nil {
		e.history.EnsureURL(push)
	}
}

func (e *Engine) redirect(res Resolution) {
	switch {
	case e.history == nil:
		e.TransitionTo(res.target, nil, nil)
	case res.isReplace():
		e.history.Replace(res.target, nil, nil)
	default:
		e.history.Push(res.target, nil, nil)
	}
}

func (e *Engine) bindEnterGuard(eg enterGuard, isValid func() bool, deferCb func(func())) Guard {
	return func(to, from *Route, next Next) {
		var once atomic.Bool
		eg.guard(to, from, func(res Resolution) {
			if res.kind == resolveAfterEnter && res.callback != nil && once.CompareAndSwap(false, true) {
				cb := res.callback
				deferCb(func() { e.poll(cb, eg.record.id, eg.view, isValid) })
			}
			next(res)
		})
	}
}

// poll hands the view's instance to cb once it is registered and alive,
// retrying while the navigation that produced cb is still current.
func (e *Engine) poll(cb func(Instance), id RecordID, view string, isValid func() bool) {
	if e.instances == nil {
		e.logger.Debug("dropping enter callback without an instance lookup", "view", view)
		return
	}
	if inst, ok := e.instances.Instance(id, view); ok && inst != nil && !beingDestroyed(inst) {
		cb(inst)
		return
	}
	if isValid() {
		e.clock.AfterFunc(e.pollInterval, func() { e.poll(cb, id, view, isValid) })
	}
}

func beingDestroyed(inst Instance) bool {
	d, ok := inst.(Destroyable)
	return ok && d.BeingDestroyed()
}

func (e *Engine) observe(to, from *Route) func(error) {
	nav := Navigation{ID: uuid.NewString(), To: to, From: from, Started: e.clock.Now()}
	e.logger.Debug("navigation started",
		"navigation_id", nav.ID,
		"from", from.fullPath,
		"to", to.fullPath)

	dones := make([]func(error), 0, len(e.observers))
	for _, o := range e.observers {
		if d := o.ObserveNavigation(nav); d != nil {
			dones = append(dones, d)
		}
	}

	var once sync.Once
	return func(err error) {
		once.Do(func() {
			attrs := []any{
				"navigation_id", nav.ID,
				"to", to.fullPath,
				"duration", e.clock.Now().Sub(nav.Started),
			}
			if err != nil {
				e.logger.Debug("navigation aborted", append(attrs, "error", err)...)
			} else {
				e.logger.Debug("navigation committed", attrs...)
			}
			for _, d := range dones {
				d(err)
			}
		})
	}
}

// sameLeaf reports whether a and b matched equally deep chains ending in
// the same record.
func sameLeaf(a, b *Route) bool {
	if len(a.matched) != len(b.matched) {
		return false
	}
	return len(a.matched) == 0 || a.matched[len(a.matched)-1] == b.matched[len(b.matched)-1]
}

// resolveQueue splits two matched chains at their first difference.
func resolveQueue(current, next []*RouteRecord) (updated, activated, deactivated []*RouteRecord) {
	i := 0
	for i < len(current) && i < len(next) && current[i] == next[i] {
		i++
	}
	return next[:i], next[i:], current[i:]
}

// runQueue calls iterate for each non-nil guard in order. iterate
// advances by calling its second argument; done runs after the last
// guard advances.
func runQueue(queue []Guard, iterate func(Guard, func()), done func()) {
	var step func(i int)
	step = func(i int) {
		for i < len(queue) && queue[i] == nil {
			i++
		}
		if i >= len(queue) {
			done()
			return
		}
		iterate(queue[i], func() { step(i + 1) })
	}
	step(0)
}

type hookEntry[T any] struct {
	id int
	fn T
}

type hookList[T any] struct {
	lastID  int
	entries []hookEntry[T]
}

func (l *hookList[T]) add(fn T) int {
	l.lastID++
	l.entries = append(l.entries, hookEntry[T]{id: l.lastID, fn: fn})
	return l.lastID
}

func (l *hookList[T]) remove(id int) {
	for i, h := range l.entries {
		if h.id == id {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

func (l *hookList[T]) snapshot() []T {
	out := make([]T, len(l.entries))
	for i, h := range l.entries {
		out[i] = h.fn
	}
	return out
}

func register[T any](e *Engine, l *hookList[T], fn T) func() {
	e.mu.Lock()
	id := l.add(fn)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			l.remove(id)
			e.mu.Unlock()
		})
	}
}
