package router

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// History is a platform backend: it owns the URL or entry stack and
// reports out-of-band navigations by calling the engine's TransitionTo.
type History interface {
	// Bind attaches the engine. The router calls it once on construction.
	Bind(e *Engine)

	// Push navigates to loc and records a new entry on success.
	Push(loc RawLocation, onComplete func(*Route), onAbort func(error))

	// Replace navigates to loc and overwrites the current entry on
	// success.
	Replace(loc RawLocation, onComplete func(*Route), onAbort func(error))

	// Go moves n entries through the history.
	Go(n int)

	// EnsureURL brings the platform URL in line with the current route.
	// push selects push over replace semantics where that matters.
	EnsureURL(push bool)

	// CurrentLocation returns the platform's current full path.
	CurrentLocation() string
}

// MemoryHistory keeps the entry stack in memory. It is the backend for
// abstract mode and for tests.
type MemoryHistory struct {
	mu     sync.Mutex
	engine *Engine
	stack  []*Route
	index  int
}

// NewMemoryHistory returns an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{index: -1}
}

// Bind implements History.
func (h *MemoryHistory) Bind(e *Engine) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.engine = e
}

// Push implements History.
func (h *MemoryHistory) Push(loc RawLocation, onComplete func(*Route), onAbort func(error)) {
	h.engine.TransitionTo(loc, func(route *Route) {
		h.mu.Lock()
		h.stack = append(h.stack[:h.index+1:h.index+1], route)
		h.index++
		h.mu.Unlock()
		if onComplete != nil {
			onComplete(route)
		}
	}, onAbort)
}

// Replace implements History.
func (h *MemoryHistory) Replace(loc RawLocation, onComplete func(*Route), onAbort func(error)) {
	h.engine.TransitionTo(loc, func(route *Route) {
		h.mu.Lock()
		if h.index < 0 {
			h.index = 0
		}
		h.stack = append(h.stack[:h.index:h.index], route)
		h.mu.Unlock()
		if onComplete != nil {
			onComplete(route)
		}
	}, onAbort)
}

// Go implements History. Moves outside the stack are ignored. The target
// entry is confirmed through the guard pipeline before it is committed.
func (h *MemoryHistory) Go(n int) {
	h.mu.Lock()
	target := h.index + n
	if target < 0 || target >= len(h.stack) {
		h.mu.Unlock()
		return
	}
	route := h.stack[target]
	h.mu.Unlock()

	h.engine.ConfirmTransition(route, func(*Route) {
		h.mu.Lock()
		h.index = target
		h.mu.Unlock()
		h.engine.UpdateRoute(route)
	}, nil)
}

// EnsureURL implements History. There is no URL to synchronize.
func (h *MemoryHistory) EnsureURL(bool) {}

// CurrentLocation implements History. It returns the full path of the
// newest entry, or "/".
func (h *MemoryHistory) CurrentLocation() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.stack) == 0 {
		return "/"
	}
	return h.stack[len(h.stack)-1].fullPath
}

// Entries returns the full paths on the stack, oldest first.
func (h *MemoryHistory) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.stack))
	for i, r := range h.stack {
		out[i] = r.fullPath
	}
	return out
}

// Index returns the position of the current entry, or -1.
func (h *MemoryHistory) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}

// memoryState is the persisted form of a MemoryHistory.
type memoryState struct {
	Entries []string `cbor:"1,keyasint"`
	Index   int      `cbor:"2,keyasint"`
}

var stateEncMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// ErrInvalidState is returned by RestoreState for undecodable or
// inconsistent data.
var ErrInvalidState = errors.New("invalid history state")

// MarshalState encodes the entry stack and position as CBOR.
func (h *MemoryHistory) MarshalState() ([]byte, error) {
	h.mu.Lock()
	state := memoryState{Index: h.index}
	for _, r := range h.stack {
		state.Entries = append(state.Entries, r.fullPath)
	}
	h.mu.Unlock()
	return stateEncMode.Marshal(state)
}

// RestoreState replaces the stack with entries decoded from data,
// re-matching each against the current route table. The current route is
// not changed; call Go(0) to navigate to the restored position.
func (h *MemoryHistory) RestoreState(data []byte) error {
	var state memoryState
	if err := cbor.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if state.Index < -1 || state.Index >= len(state.Entries) {
		return fmt.Errorf("%w: index %d outside %d entries", ErrInvalidState, state.Index, len(state.Entries))
	}
	if h.engine == nil {
		return fmt.Errorf("%w: history is not bound to a router", ErrInvalidState)
	}

	stack := make([]*Route, 0, len(state.Entries))
	for _, p := range state.Entries {
		stack = append(stack, h.engine.Match(Path(p), nil))
	}

	h.mu.Lock()
	h.stack = stack
	h.index = state.Index
	h.mu.Unlock()
	return nil
}
