package router

// Next continues, aborts or redirects the navigation a guard is
// inspecting. Only the first call counts.
type Next func(Resolution)

// Guard inspects a pending navigation and must call next exactly once,
// synchronously or later from any goroutine. A guard that never calls
// next stalls its navigation.
type Guard func(to, from *Route, next Next)

// AfterHook observes a committed navigation. It cannot change it.
type AfterHook func(to, from *Route)

type resolutionKind int

const (
	resolveProceed resolutionKind = iota
	resolveAbort
	resolveFail
	resolveRedirect
	resolveAfterEnter
)

// Resolution is a guard's verdict.
type Resolution struct {
	kind     resolutionKind
	err      error
	target   RawLocation
	replace  bool
	callback func(Instance)
}

// Proceed lets the navigation continue.
func Proceed() Resolution { return Resolution{kind: resolveProceed} }

// Abort cancels the navigation and restores the current URL.
func Abort() Resolution { return Resolution{kind: resolveAbort} }

// Fail cancels the navigation with err, which is reported to the
// router's error handlers. A nil err is the same as Abort.
func Fail(err error) Resolution {
	if err == nil {
		return Abort()
	}
	return Resolution{kind: resolveFail, err: err}
}

// Redirect cancels the navigation and starts a new one to target. A
// Location with Replace set replaces the current history entry.
func Redirect(target RawLocation) Resolution {
	return Resolution{kind: resolveRedirect, target: target}
}

// RedirectReplace is Redirect with replace semantics.
func RedirectReplace(target RawLocation) Resolution {
	return Resolution{kind: resolveRedirect, target: target, replace: true}
}

// AfterEnter proceeds and, when returned from an enter guard, calls cb
// with the view's instance once the navigation has committed and the
// instance is registered. Elsewhere it is the same as Proceed.
func AfterEnter(cb func(Instance)) Resolution {
	return Resolution{kind: resolveAfterEnter, callback: cb}
}

// isRedirect reports whether the resolution names a usable target:
// any Path or *Route, or a Location carrying a path or name.
func (r Resolution) isRedirect() bool {
	if r.kind != resolveRedirect || r.target == nil {
		return false
	}
	if loc, ok := r.target.(Location); ok {
		return loc.Path != "" || loc.Name != ""
	}
	return true
}

func (r Resolution) isReplace() bool {
	if r.replace {
		return true
	}
	loc, ok := r.target.(Location)
	return ok && loc.Replace
}

// ComposeGuards runs guards in order as one guard. The first verdict
// other than Proceed ends the chain and is passed on.
func ComposeGuards(guards ...Guard) Guard {
	return func(to, from *Route, next Next) {
		var step func(i int)
		step = func(i int) {
			if i >= len(guards) {
				next(Proceed())
				return
			}
			if guards[i] == nil {
				step(i + 1)
				return
			}
			guards[i](to, from, func(res Resolution) {
				if res.kind == resolveProceed {
					step(i + 1)
					return
				}
				next(res)
			})
		}
		step(0)
	}
}

// Skip bypasses g when condition holds.
func Skip(condition func(to, from *Route) bool, g Guard) Guard {
	return func(to, from *Route, next Next) {
		if condition(to, from) {
			next(Proceed())
			return
		}
		g(to, from, next)
	}
}

// Only runs g when condition holds.
func Only(condition func(to, from *Route) bool, g Guard) Guard {
	return func(to, from *Route, next Next) {
		if !condition(to, from) {
			next(Proceed())
			return
		}
		g(to, from, next)
	}
}
