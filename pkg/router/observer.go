package router

import "time"

// Navigation describes one transition attempt.
type Navigation struct {
	ID      string
	To      *Route
	From    *Route
	Started time.Time
}

// Observer is notified when a navigation starts. The returned function
// is called once when it ends, with nil on commit or the
// *NavigationError that stopped it.
type Observer interface {
	ObserveNavigation(nav Navigation) (done func(err error))
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(nav Navigation) func(err error)

// ObserveNavigation implements Observer.
func (f ObserverFunc) ObserveNavigation(nav Navigation) func(error) { return f(nav) }

// Scheduler defers work until after the host's next render or flush.
type Scheduler interface {
	NextTick(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

// NextTick implements Scheduler.
func (f SchedulerFunc) NextTick(fn func()) { f(fn) }

// immediate runs deferred work right away.
var immediate = SchedulerFunc(func(fn func()) { fn() })
