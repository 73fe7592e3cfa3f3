package router

import (
	"errors"
	"testing"
)

func entriesEqual(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestMemoryHistory(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{
		{Path: "/a"}, {Path: "/b"}, {Path: "/c"}, {Path: "/d"}, {Path: "/e"},
	})
	h := r.History().(*MemoryHistory)

	if h.Index() != -1 {
		t.Errorf("Index() = %d, want -1", h.Index())
	}
	if h.CurrentLocation() != "/" {
		t.Errorf("CurrentLocation() = %q, want /", h.CurrentLocation())
	}

	mustPush(t, r, Path("/a"))
	mustPush(t, r, Path("/b"))
	mustPush(t, r, Path("/c"))

	r.Back()
	if got := r.CurrentRoute().Path(); got != "/b" {
		t.Errorf("after Back current = %q, want /b", got)
	}
	if h.Index() != 1 {
		t.Errorf("Index() = %d, want 1", h.Index())
	}

	r.Forward()
	if got := r.CurrentRoute().Path(); got != "/c" {
		t.Errorf("after Forward current = %q, want /c", got)
	}
	r.Back()

	// Pushing drops the forward entries.
	mustPush(t, r, Path("/d"))
	if want := []string{"/a", "/b", "/d"}; !entriesEqual(h.Entries(), want) {
		t.Errorf("Entries() = %v, want %v", h.Entries(), want)
	}

	r.Go(10)
	if h.Index() != 2 {
		t.Errorf("Go out of range moved Index() to %d", h.Index())
	}

	if _, err := push(t, r, Path("/e"), WithReplace()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if want := []string{"/a", "/b", "/e"}; !entriesEqual(h.Entries(), want) {
		t.Errorf("Entries() = %v, want %v", h.Entries(), want)
	}
	if h.Index() != 2 {
		t.Errorf("Index() = %d, want 2", h.Index())
	}
}

func TestMemoryHistoryGoRunsGuards(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/a"}, {Path: "/b"}})
	h := r.History().(*MemoryHistory)
	mustPush(t, r, Path("/a"))
	mustPush(t, r, Path("/b"))

	r.BeforeEach(func(to, from *Route, next Next) { next(Abort()) })
	r.Back()

	if got := r.CurrentRoute().Path(); got != "/b" {
		t.Errorf("current = %q, want /b", got)
	}
	if h.Index() != 1 {
		t.Errorf("Index() = %d, want 1", h.Index())
	}
}

func TestMemoryHistoryReplaceOnEmpty(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/a"}})
	h := r.History().(*MemoryHistory)

	if _, err := push(t, r, Path("/a"), WithReplace()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if h.Index() != 0 {
		t.Errorf("Index() = %d, want 0", h.Index())
	}
	if want := []string{"/a"}; !entriesEqual(h.Entries(), want) {
		t.Errorf("Entries() = %v, want %v", h.Entries(), want)
	}
}

func TestMemoryHistoryState(t *testing.T) {
	routes := []RouteConfig{{Path: "/a"}, {Path: "/b/:id"}}

	r1 := newTestRouter(t, routes)
	mustPush(t, r1, Path("/a"))
	mustPush(t, r1, Path("/b/7?x=1"))
	r1.Back()

	data, err := r1.History().(*MemoryHistory).MarshalState()
	if err != nil {
		t.Fatalf("MarshalState: %v", err)
	}

	r2 := newTestRouter(t, routes)
	h2 := r2.History().(*MemoryHistory)
	if err := h2.RestoreState(data); err != nil {
		t.Fatalf("RestoreState: %v", err)
	}
	if want := []string{"/a", "/b/7?x=1"}; !entriesEqual(h2.Entries(), want) {
		t.Errorf("Entries() = %v, want %v", h2.Entries(), want)
	}
	if h2.Index() != 0 {
		t.Errorf("Index() = %d, want 0", h2.Index())
	}
	if r2.CurrentRoute() != Start {
		t.Error("RestoreState navigated")
	}

	r2.Go(1)
	if got := r2.CurrentRoute().Param("id"); got != "7" {
		t.Errorf("restored route param id = %q, want 7", got)
	}
}

func TestMemoryHistoryRestoreInvalid(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/a"}})
	h := r.History().(*MemoryHistory)

	badIndex, err := stateEncMode.Marshal(memoryState{Entries: []string{"/a"}, Index: 3})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	for name, data := range map[string][]byte{
		"garbage":   {0xff},
		"bad index": badIndex,
	} {
		t.Run(name, func(t *testing.T) {
			if err := h.RestoreState(data); !errors.Is(err, ErrInvalidState) {
				t.Errorf("RestoreState() = %v, want ErrInvalidState", err)
			}
		})
	}
}
