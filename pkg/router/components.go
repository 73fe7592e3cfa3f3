package router

import (
	"context"
	"fmt"
	"sync"
)

// LazyComponent is a component loaded on first navigation into a route
// that uses it. A successful load is kept; a failed load is retried by
// the next navigation.
type LazyComponent struct {
	load func(ctx context.Context) (Component, error)

	mu       sync.Mutex
	resolved Component
	done     bool
	inflight *lazyLoad
}

// lazyLoad is one load attempt shared by every caller that arrives
// while it runs.
type lazyLoad struct {
	finished  chan struct{}
	component Component
	err       error
}

// Lazy wraps a loader as a LazyComponent.
func Lazy(load func(ctx context.Context) (Component, error)) *LazyComponent {
	return &LazyComponent{load: load}
}

// Resolve loads the component if needed. Concurrent callers share one
// load, which runs without holding the component's lock.
func (l *LazyComponent) Resolve(ctx context.Context) (Component, error) {
	l.mu.Lock()
	if l.done {
		c := l.resolved
		l.mu.Unlock()
		return c, nil
	}
	if attempt := l.inflight; attempt != nil {
		l.mu.Unlock()
		select {
		case <-attempt.finished:
			return attempt.component, attempt.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	attempt := &lazyLoad{finished: make(chan struct{})}
	l.inflight = attempt
	l.mu.Unlock()

	attempt.component, attempt.err = l.load(ctx)

	l.mu.Lock()
	if attempt.err == nil {
		l.resolved, l.done = attempt.component, true
	}
	l.inflight = nil
	l.mu.Unlock()
	close(attempt.finished)

	if attempt.err != nil {
		return nil, attempt.err
	}
	return attempt.component, nil
}

// Resolved returns the loaded component, if any.
func (l *LazyComponent) Resolved() (Component, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resolved, l.done
}

func resolvedComponent(c Component) Component {
	if l, ok := c.(*LazyComponent); ok {
		if r, done := l.Resolved(); done {
			return r
		}
	}
	return c
}

// Instances looks up the live instance bound to a record's view. It is
// implemented by the rendering layer.
type Instances interface {
	Instance(record RecordID, view string) (Instance, bool)
}

type instanceKey struct {
	record RecordID
	view   string
}

// InstanceTable is a concurrency-safe Instances implementation the
// rendering layer can register into.
type InstanceTable struct {
	mu sync.RWMutex
	m  map[instanceKey]Instance
}

// NewInstanceTable returns an empty table.
func NewInstanceTable() *InstanceTable {
	return &InstanceTable{m: make(map[instanceKey]Instance)}
}

// Register binds inst to a record's view.
func (t *InstanceTable) Register(record RecordID, view string, inst Instance) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[instanceKey{record, view}] = inst
}

// Unregister removes the binding.
func (t *InstanceTable) Unregister(record RecordID, view string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.m, instanceKey{record, view})
}

// Instance implements Instances.
func (t *InstanceTable) Instance(record RecordID, view string) (Instance, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	inst, ok := t.m[instanceKey{record, view}]
	return inst, ok
}

// leaveGuards collects the leave guards of live instances, deepest
// record first.
func leaveGuards(records []*RouteRecord, instances Instances) []Guard {
	var guards []Guard
	forEachInstance(records, instances, func(inst Instance) {
		if g, ok := inst.(LeaveGuard); ok {
			guards = append(guards, g.BeforeRouteLeave)
		}
	})
	for i, j := 0, len(guards)-1; i < j; i, j = i+1, j-1 {
		guards[i], guards[j] = guards[j], guards[i]
	}
	return guards
}

// updateGuards collects the update guards of live instances, root first.
func updateGuards(records []*RouteRecord, instances Instances) []Guard {
	var guards []Guard
	forEachInstance(records, instances, func(inst Instance) {
		if g, ok := inst.(UpdateGuard); ok {
			guards = append(guards, g.BeforeRouteUpdate)
		}
	})
	return guards
}

func forEachInstance(records []*RouteRecord, instances Instances, fn func(Instance)) {
	if instances == nil {
		return
	}
	for _, rec := range records {
		for _, view := range rec.views {
			if inst, ok := instances.Instance(rec.id, view); ok && inst != nil {
				fn(inst)
			}
		}
	}
}

// enterGuard pairs a component's enter guard with the view it guards.
type enterGuard struct {
	record *RouteRecord
	view   string
	guard  Guard
}

// enterGuards collects enter guards of the (resolved) components of
// records, root first.
func enterGuards(records []*RouteRecord) []enterGuard {
	var guards []enterGuard
	for _, rec := range records {
		for _, view := range rec.views {
			c := resolvedComponent(rec.components[view])
			if g, ok := c.(EnterGuard); ok {
				guards = append(guards, enterGuard{record: rec, view: view, guard: g.BeforeRouteEnter})
			}
		}
	}
	return guards
}

// resolveLazy returns a guard that loads every lazy component of
// records. It proceeds once all loads succeed and fails on the first
// error.
func resolveLazy(ctx context.Context, records []*RouteRecord) Guard {
	type pendingLoad struct {
		view string
		lazy *LazyComponent
	}
	var loads []pendingLoad
	for _, rec := range records {
		for _, view := range rec.views {
			if l, ok := rec.components[view].(*LazyComponent); ok {
				if _, done := l.Resolved(); !done {
					loads = append(loads, pendingLoad{view: view, lazy: l})
				}
			}
		}
	}

	return func(to, from *Route, next Next) {
		if len(loads) == 0 {
			next(Proceed())
			return
		}

		var (
			wg   sync.WaitGroup
			once sync.Once
		)
		for _, p := range loads {
			wg.Add(1)
			go func(p pendingLoad) {
				defer wg.Done()
				if _, err := p.lazy.Resolve(ctx); err != nil {
					once.Do(func() {
						next(Fail(fmt.Errorf("failed to resolve async component %s: %w", p.view, err)))
					})
				}
			}(p)
		}
		go func() {
			wg.Wait()
			once.Do(func() { next(Proceed()) })
		}()
	}
}
