package router

// Component is an opaque view handle. The router never inspects a
// component beyond the optional guard interfaces below and LazyComponent.
type Component any

// Instance is a live, rendered component bound to one view of a record.
// Instances are registered by the rendering layer through Instances.
type Instance any

// Params are the decoded path parameters of a route.
type Params map[string]string

// Clone returns a copy of p. A nil Params clones to nil.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Equal reports whether p and other hold the same entries.
func (p Params) Equal(other Params) bool {
	if len(p) != len(other) {
		return false
	}
	for k, v := range p {
		w, ok := other[k]
		if !ok || v != w {
			return false
		}
	}
	return true
}

// Meta is the free-form metadata bag attached to a route record.
type Meta map[string]any

func (m Meta) clone() Meta {
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// EnterGuard is implemented by component definitions that want to veto
// or redirect navigations entering their view. The instance does not
// exist yet; use AfterEnter to receive it once it does.
type EnterGuard interface {
	BeforeRouteEnter(to, from *Route, next Next)
}

// UpdateGuard is implemented by instances whose view is reused by a
// navigation (same record, different params or query).
type UpdateGuard interface {
	BeforeRouteUpdate(to, from *Route, next Next)
}

// LeaveGuard is implemented by instances whose view is about to be
// removed.
type LeaveGuard interface {
	BeforeRouteLeave(to, from *Route, next Next)
}

// Destroyable is implemented by instances that can report they are being
// torn down. Such instances are not handed to AfterEnter callbacks.
type Destroyable interface {
	BeingDestroyed() bool
}

// Mode selects how hrefs are built.
type Mode string

const (
	// ModeAbstract keeps history in memory; hrefs are plain paths.
	ModeAbstract Mode = "abstract"

	// ModeHistory builds hrefs as plain paths under the base.
	ModeHistory Mode = "history"

	// ModeHash prefixes hrefs with "#".
	ModeHash Mode = "hash"
)
