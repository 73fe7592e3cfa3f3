package router

import (
	"errors"
	"testing"
)

func recordGuard(log *[]string, name string, res Resolution) Guard {
	return func(to, from *Route, next Next) {
		*log = append(*log, name)
		next(res)
	}
}

func TestComposeGuards(t *testing.T) {
	tests := []struct {
		name   string
		guards func(log *[]string) []Guard
		calls  []string
		kind   resolutionKind
	}{
		{
			name: "all proceed",
			guards: func(log *[]string) []Guard {
				return []Guard{recordGuard(log, "a", Proceed()), nil, recordGuard(log, "b", Proceed())}
			},
			calls: []string{"a", "b"},
			kind:  resolveProceed,
		},
		{
			name: "abort stops the chain",
			guards: func(log *[]string) []Guard {
				return []Guard{recordGuard(log, "a", Abort()), recordGuard(log, "b", Proceed())}
			},
			calls: []string{"a"},
			kind:  resolveAbort,
		},
		{
			name: "redirect passes through",
			guards: func(log *[]string) []Guard {
				return []Guard{recordGuard(log, "a", Proceed()), recordGuard(log, "b", Redirect(Path("/x")))}
			},
			calls: []string{"a", "b"},
			kind:  resolveRedirect,
		},
		{
			name:   "empty",
			guards: func(*[]string) []Guard { return nil },
			kind:   resolveProceed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log []string
			var got Resolution
			ComposeGuards(tt.guards(&log)...)(Start, Start, func(res Resolution) { got = res })

			if len(log) != len(tt.calls) {
				t.Fatalf("calls = %v, want %v", log, tt.calls)
			}
			for i := range tt.calls {
				if log[i] != tt.calls[i] {
					t.Errorf("calls[%d] = %q, want %q", i, log[i], tt.calls[i])
				}
			}
			if got.kind != tt.kind {
				t.Errorf("resolution kind = %d, want %d", got.kind, tt.kind)
			}
		})
	}
}

func TestSkipAndOnly(t *testing.T) {
	isAdmin := func(to, from *Route) bool { return to.Path() == "/admin" }
	deny := func(to, from *Route, next Next) { next(Abort()) }

	m := newTestMatcher(t, nil)
	admin := m.Match(Path("/admin"), nil)
	home := m.Match(Path("/"), nil)

	tests := []struct {
		name  string
		guard Guard
		to    *Route
		want  resolutionKind
	}{
		{"only matching", Only(isAdmin, deny), admin, resolveAbort},
		{"only other", Only(isAdmin, deny), home, resolveProceed},
		{"skip matching", Skip(isAdmin, deny), admin, resolveProceed},
		{"skip other", Skip(isAdmin, deny), home, resolveAbort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Resolution
			tt.guard(tt.to, Start, func(res Resolution) { got = res })
			if got.kind != tt.want {
				t.Errorf("resolution kind = %d, want %d", got.kind, tt.want)
			}
		})
	}
}

func TestResolution(t *testing.T) {
	if Fail(nil).kind != resolveAbort {
		t.Error("Fail(nil) should abort")
	}
	if err := errors.New("x"); Fail(err).err != err {
		t.Error("Fail(err) lost err")
	}
	if Redirect(Location{Hash: "#only"}).isRedirect() {
		t.Error("a location without path or name is not a redirect")
	}
	if !Redirect(Location{Name: "n"}).isRedirect() {
		t.Error("a named location is a redirect")
	}
	if !RedirectReplace(Path("/x")).isReplace() {
		t.Error("RedirectReplace should replace")
	}
	if Redirect(Path("/x")).isReplace() {
		t.Error("Redirect of a path should push")
	}
}
