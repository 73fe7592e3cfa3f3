package router

import (
	"errors"
	"fmt"
)

// Reason says why a navigation did not commit.
type Reason int

const (
	// Duplicated means the target equals the current route.
	Duplicated Reason = iota + 1

	// Aborted means a guard resolved with Abort.
	Aborted

	// Cancelled means a newer navigation superseded this one.
	Cancelled

	// Redirected means a guard redirected elsewhere.
	Redirected

	// Failed means a guard failed, panicked, or a lazy component did not
	// load.
	Failed
)

func (r Reason) String() string {
	switch r {
	case Duplicated:
		return "duplicated"
	case Aborted:
		return "aborted"
	case Cancelled:
		return "cancelled"
	case Redirected:
		return "redirected"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// NavigationError is passed to abort callbacks. Err is set only when
// Reason is Failed.
type NavigationError struct {
	Reason Reason
	From   *Route
	To     *Route
	Err    error
}

func (e *NavigationError) Error() string {
	msg := fmt.Sprintf("navigation %s: %s -> %s", e.Reason, fullPathOf(e.From), fullPathOf(e.To))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NavigationError) Unwrap() error { return e.Err }

// IsNavigationFailure reports whether err is a *NavigationError with one
// of the given reasons, or with any reason when none are given.
func IsNavigationFailure(err error, reasons ...Reason) bool {
	var ne *NavigationError
	if !errors.As(err, &ne) {
		return false
	}
	if len(reasons) == 0 {
		return true
	}
	for _, r := range reasons {
		if ne.Reason == r {
			return true
		}
	}
	return false
}

// PanicError wraps a value recovered from a panicking guard.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("guard panicked: %v", e.Value)
}

func fullPathOf(r *Route) string {
	if r == nil {
		return "<nil>"
	}
	return r.fullPath
}
