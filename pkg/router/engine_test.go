package router

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/vroute/internal/clock"
)

func newTestRouter(t *testing.T, routes []RouteConfig, opts ...Option) *Router {
	t.Helper()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	r, err := New(routes, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func push(t *testing.T, r *Router, to RawLocation, opts ...NavigateOption) (*Route, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	route, err := r.NavigateWait(ctx, to, opts...)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("navigation to %v did not settle", to)
	}
	return route, err
}

func mustPush(t *testing.T, r *Router, to RawLocation) *Route {
	t.Helper()
	route, err := push(t, r, to)
	if err != nil {
		t.Fatalf("push %v: %v", to, err)
	}
	return route
}

type logInstance struct {
	log  *[]string
	name string
}

func (i *logInstance) BeforeRouteLeave(to, from *Route, next Next) {
	*i.log = append(*i.log, i.name+".leave")
	next(Proceed())
}

func (i *logInstance) BeforeRouteUpdate(to, from *Route, next Next) {
	*i.log = append(*i.log, i.name+".update")
	next(Proceed())
}

type enterComponent struct {
	log  *[]string
	name string
}

func (c *enterComponent) BeforeRouteEnter(to, from *Route, next Next) {
	*c.log = append(*c.log, c.name+".enter")
	next(Proceed())
}

func TestGuardOrder(t *testing.T) {
	var log []string
	table := NewInstanceTable()

	r := newTestRouter(t, []RouteConfig{
		{Path: "/parent", Component: &enterComponent{&log, "parent"}, Children: []RouteConfig{
			{Path: "a", Component: &enterComponent{&log, "a"}},
			{Path: "b", Component: &enterComponent{&log, "b"}, BeforeEnter: func(to, from *Route, next Next) {
				log = append(log, "b.beforeEnter")
				next(Proceed())
			}},
		}},
	}, WithInstances(table))

	r.BeforeEach(func(to, from *Route, next Next) {
		log = append(log, "beforeEach")
		next(Proceed())
	})
	r.BeforeResolve(func(to, from *Route, next Next) {
		log = append(log, "beforeResolve")
		next(Proceed())
	})
	r.AfterEach(func(to, from *Route) {
		log = append(log, "afterEach")
	})

	mustPush(t, r, Path("/parent/a"))

	parent, _ := r.Registry().ByPath("/parent")
	a, _ := r.Registry().ByPath("/parent/a")
	table.Register(parent.ID(), DefaultView, &logInstance{&log, "parent"})
	table.Register(a.ID(), DefaultView, &logInstance{&log, "a"})
	log = nil

	mustPush(t, r, Path("/parent/b"))

	want := []string{
		"a.leave",
		"beforeEach",
		"parent.update",
		"b.beforeEnter",
		"b.enter",
		"beforeResolve",
		"afterEach",
	}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestLeaveGuardsInnermostFirst(t *testing.T) {
	var log []string
	table := NewInstanceTable()

	r := newTestRouter(t, []RouteConfig{
		{Path: "/outer", Children: []RouteConfig{{Path: "inner"}}},
		{Path: "/other"},
	}, WithInstances(table))

	mustPush(t, r, Path("/outer/inner"))
	outer, _ := r.Registry().ByPath("/outer")
	inner, _ := r.Registry().ByPath("/outer/inner")
	table.Register(outer.ID(), DefaultView, &logInstance{&log, "outer"})
	table.Register(inner.ID(), DefaultView, &logInstance{&log, "inner"})

	mustPush(t, r, Path("/other"))

	if len(log) != 2 || log[0] != "inner.leave" || log[1] != "outer.leave" {
		t.Errorf("log = %v, want [inner.leave outer.leave]", log)
	}
}

func TestGuardAbort(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/login"}, {Path: "/admin"}})
	mustPush(t, r, Path("/login"))

	r.BeforeEach(func(to, from *Route, next Next) {
		if to.Path() == "/admin" {
			next(Abort())
			return
		}
		next(Proceed())
	})

	aborts := 0
	var abortErr error
	r.Push(Path("/admin"),
		OnComplete(func(*Route) { t.Error("navigation to /admin committed") }),
		OnAbort(func(err error) {
			aborts++
			abortErr = err
		}),
	)

	if aborts != 1 {
		t.Errorf("onAbort called %d times, want 1", aborts)
	}
	if !IsNavigationFailure(abortErr, Aborted) {
		t.Errorf("abort error = %v, want Aborted", abortErr)
	}
	if got := r.CurrentRoute().Path(); got != "/login" {
		t.Errorf("current = %q, want %q", got, "/login")
	}
	h := r.History().(*MemoryHistory)
	if entries := h.Entries(); len(entries) != 1 || entries[0] != "/login" {
		t.Errorf("Entries() = %v, want [/login]", entries)
	}
}

func TestGuardRedirect(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/"}, {Path: "/login"}, {Path: "/admin"}})
	mustPush(t, r, Path("/"))

	r.BeforeEach(func(to, from *Route, next Next) {
		if to.Path() == "/admin" {
			next(Redirect(Path("/login")))
			return
		}
		next(Proceed())
	})

	_, err := push(t, r, Path("/admin"))
	if !IsNavigationFailure(err, Redirected) {
		t.Errorf("err = %v, want Redirected", err)
	}
	if got := r.CurrentRoute().Path(); got != "/login" {
		t.Errorf("current = %q, want %q", got, "/login")
	}

	h := r.History().(*MemoryHistory)
	entries := h.Entries()
	if len(entries) != 2 || entries[1] != "/login" {
		t.Errorf("Entries() = %v, want [/ /login]", entries)
	}
}

func TestGuardRedirectReplace(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/"}, {Path: "/login"}, {Path: "/admin"}})
	mustPush(t, r, Path("/"))

	r.BeforeEach(func(to, from *Route, next Next) {
		if to.Path() == "/admin" {
			next(Redirect(Location{Path: "/login", Replace: true}))
			return
		}
		next(Proceed())
	})

	push(t, r, Path("/admin"))

	h := r.History().(*MemoryHistory)
	entries := h.Entries()
	if len(entries) != 1 || entries[0] != "/login" {
		t.Errorf("Entries() = %v, want [/login]", entries)
	}
}

func TestCancelledBySupersedingNavigation(t *testing.T) {
	var held Next
	r := newTestRouter(t, []RouteConfig{
		{Path: "/slow", BeforeEnter: func(to, from *Route, next Next) { held = next }},
		{Path: "/fast"},
	})

	var slowErr error
	r.Push(Path("/slow"),
		OnComplete(func(*Route) { t.Error("superseded navigation committed") }),
		OnAbort(func(err error) { slowErr = err }),
	)
	if held == nil {
		t.Fatal("slow guard did not run")
	}

	mustPush(t, r, Path("/fast"))
	held(Proceed())

	if !IsNavigationFailure(slowErr, Cancelled) {
		t.Errorf("slow navigation err = %v, want Cancelled", slowErr)
	}
	if got := r.CurrentRoute().Path(); got != "/fast" {
		t.Errorf("current = %q, want %q", got, "/fast")
	}
	h := r.History().(*MemoryHistory)
	if entries := h.Entries(); len(entries) != 1 || entries[0] != "/fast" {
		t.Errorf("Entries() = %v, want [/fast]", entries)
	}
}

func TestDuplicatedNavigation(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/a"}})
	mustPush(t, r, Path("/a"))

	_, err := push(t, r, Path("/a"))
	if !IsNavigationFailure(err, Duplicated) {
		t.Errorf("err = %v, want Duplicated", err)
	}

	// A different query is a different route.
	if _, err := push(t, r, Path("/a?x=1")); err != nil {
		t.Errorf("push /a?x=1: %v", err)
	}
}

func TestGuardFail(t *testing.T) {
	boom := errors.New("boom")
	r := newTestRouter(t, []RouteConfig{{Path: "/fail"}, {Path: "/panic"}})

	r.BeforeEach(func(to, from *Route, next Next) {
		switch to.Path() {
		case "/fail":
			next(Fail(boom))
		case "/panic":
			panic("kaboom")
		default:
			next(Proceed())
		}
	})

	var reported []error
	r.OnError(func(err error) { reported = append(reported, err) })

	_, err := push(t, r, Path("/fail"))
	if !IsNavigationFailure(err, Failed) {
		t.Errorf("err = %v, want Failed", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapping %v", err, boom)
	}

	_, err = push(t, r, Path("/panic"))
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != "kaboom" {
		t.Errorf("err = %v, want PanicError(kaboom)", err)
	}

	if len(reported) != 2 {
		t.Fatalf("OnError called %d times, want 2", len(reported))
	}
	if !errors.Is(reported[0], boom) {
		t.Errorf("reported[0] = %v, want wrapping %v", reported[0], boom)
	}
	if r.CurrentRoute() != Start {
		t.Errorf("current = %v, want Start", r.CurrentRoute())
	}
}

func TestFailNilIsAbort(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/a"}})
	r.BeforeEach(func(to, from *Route, next Next) { next(Fail(nil)) })

	reported := 0
	r.OnError(func(error) { reported++ })

	_, err := push(t, r, Path("/a"))
	if !IsNavigationFailure(err, Aborted) {
		t.Errorf("err = %v, want Aborted", err)
	}
	if reported != 0 {
		t.Errorf("OnError called %d times, want 0", reported)
	}
}

func TestNextCalledTwice(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/a"}})
	r.BeforeEach(func(to, from *Route, next Next) {
		next(Proceed())
		next(Abort())
	})

	commits := 0
	r.AfterEach(func(to, from *Route) { commits++ })

	if _, err := push(t, r, Path("/a")); err != nil {
		t.Fatalf("push: %v", err)
	}
	if commits != 1 {
		t.Errorf("commits = %d, want 1", commits)
	}
}

func TestUnregisterHook(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/a"}, {Path: "/b"}})

	calls := 0
	remove := r.BeforeEach(func(to, from *Route, next Next) {
		calls++
		next(Proceed())
	})
	mustPush(t, r, Path("/a"))
	remove()
	remove()
	mustPush(t, r, Path("/b"))

	if calls != 1 {
		t.Errorf("guard called %d times, want 1", calls)
	}
}

func TestListenAndAfterEach(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/a"}, {Path: "/b"}})
	mustPush(t, r, Path("/a"))

	var order []string
	r.Listen(func(route *Route) { order = append(order, "listen "+route.Path()) })
	r.AfterEach(func(to, from *Route) { order = append(order, "after "+from.Path()+"->"+to.Path()) })

	mustPush(t, r, Path("/b"))

	want := []string{"listen /b", "after /a->/b"}
	if len(order) != 2 || order[0] != want[0] || order[1] != want[1] {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestLazyComponent(t *testing.T) {
	var loads atomic.Int32
	lazy := Lazy(func(ctx context.Context) (Component, error) {
		loads.Add(1)
		return "loaded", nil
	})

	r := newTestRouter(t, []RouteConfig{
		{Path: "/lazy", Component: lazy},
		{Path: "/other"},
	})

	route := mustPush(t, r, Path("/lazy"))
	c, ok := route.Matched()[0].Component(DefaultView)
	if !ok || c != "loaded" {
		t.Errorf("Component() = %v, want loaded", c)
	}

	mustPush(t, r, Path("/other"))
	mustPush(t, r, Path("/lazy"))
	if n := loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
}

func TestLazyComponentFailure(t *testing.T) {
	loadErr := errors.New("chunk missing")
	var loads atomic.Int32
	lazy := Lazy(func(ctx context.Context) (Component, error) {
		if loads.Add(1) == 1 {
			return nil, loadErr
		}
		return "loaded", nil
	})

	r := newTestRouter(t, []RouteConfig{{Path: "/lazy", Component: lazy}})

	_, err := push(t, r, Path("/lazy"))
	if !IsNavigationFailure(err, Failed) || !errors.Is(err, loadErr) {
		t.Fatalf("err = %v, want Failed wrapping %v", err, loadErr)
	}

	// Failed loads are retried.
	if _, err := push(t, r, Path("/lazy")); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if n := loads.Load(); n != 2 {
		t.Errorf("loads = %d, want 2", n)
	}
}

type afterEnterComponent struct {
	got *Instance
}

func (c afterEnterComponent) BeforeRouteEnter(to, from *Route, next Next) {
	next(AfterEnter(func(inst Instance) { *c.got = inst }))
}

func TestAfterEnterPollsForInstance(t *testing.T) {
	fc := clock.Fake(time.Unix(0, 0))
	table := NewInstanceTable()

	var got Instance
	r := newTestRouter(t, []RouteConfig{
		{Path: "/view", Component: afterEnterComponent{&got}},
	}, WithClock(fc), WithInstances(table))

	mustPush(t, r, Path("/view"))
	if got != nil {
		t.Fatalf("callback ran before the instance existed: %v", got)
	}
	if fc.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", fc.Pending())
	}

	fc.Advance(DefaultPollInterval)
	if got != nil {
		t.Fatal("callback ran without an instance")
	}

	rec, _ := r.Registry().ByPath("/view")
	table.Register(rec.ID(), DefaultView, "instance")
	fc.Advance(DefaultPollInterval)

	if got != "instance" {
		t.Errorf("instance = %v, want %q", got, "instance")
	}
	if fc.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", fc.Pending())
	}
}

func TestAfterEnterStopsWhenRouteChanges(t *testing.T) {
	fc := clock.Fake(time.Unix(0, 0))
	table := NewInstanceTable()

	var got Instance
	r := newTestRouter(t, []RouteConfig{
		{Path: "/view", Component: afterEnterComponent{&got}},
		{Path: "/other"},
	}, WithClock(fc), WithInstances(table))

	mustPush(t, r, Path("/view"))
	mustPush(t, r, Path("/other"))
	fc.Advance(DefaultPollInterval)

	if fc.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 after leaving the route", fc.Pending())
	}
	if got != nil {
		t.Errorf("instance = %v, want nil", got)
	}
}

func TestOnReady(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/"}})

	var ready *Route
	r.OnReady(func(route *Route) { ready = route }, nil)
	if ready != nil {
		t.Fatal("OnReady fired before Start")
	}

	r.Start()
	if ready == nil || ready.Path() != "/" {
		t.Fatalf("ready = %v, want /", ready)
	}
	if !r.Engine().Ready() {
		t.Error("Ready() = false after Start")
	}

	late := false
	r.OnReady(func(*Route) { late = true }, nil)
	if !late {
		t.Error("OnReady after ready did not fire immediately")
	}
}

func TestOnReadyError(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/"}})
	r.BeforeEach(func(to, from *Route, next Next) { next(Fail(errors.New("denied"))) })

	var readyErr error
	r.OnReady(func(*Route) { t.Error("ready callback fired on failure") }, func(err error) { readyErr = err })
	r.Start()

	if !IsNavigationFailure(readyErr, Failed) {
		t.Errorf("ready error = %v, want Failed", readyErr)
	}
}

func TestObserver(t *testing.T) {
	var started, committed, aborted int
	obs := ObserverFunc(func(nav Navigation) func(error) {
		started++
		if nav.ID == "" {
			t.Error("navigation has no ID")
		}
		return func(err error) {
			if err != nil {
				aborted++
				return
			}
			committed++
		}
	})

	r := newTestRouter(t, []RouteConfig{{Path: "/a"}}, WithObserver(obs))
	mustPush(t, r, Path("/a"))
	push(t, r, Path("/a"))

	if started != 2 || committed != 1 || aborted != 1 {
		t.Errorf("started=%d committed=%d aborted=%d, want 2 1 1", started, committed, aborted)
	}
}
