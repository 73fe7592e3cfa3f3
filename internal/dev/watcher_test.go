package dev

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vango-dev/vroute/pkg/router"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeRoutes(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestWatcher(t *testing.T, initial string) (*RouteWatcher, *router.Router, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	writeRoutes(t, path, initial)

	routes := []router.RouteConfig{{Path: "/a"}}
	r, err := router.New(routes, router.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("router.New() error = %v", err)
	}
	w, err := NewRouteWatcher(r, WatcherConfig{
		Path:     path,
		Debounce: 10 * time.Millisecond,
		Initial:  routes,
		Logger:   discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewRouteWatcher() error = %v", err)
	}
	return w, r, path
}

func TestReloadAddsNewRoutes(t *testing.T) {
	w, r, path := newTestWatcher(t, "routes:\n  - path: /a\n")
	defer w.watcher.Close()

	writeRoutes(t, path, "routes:\n  - path: /a\n  - path: /b\n    name: b\n")
	res := w.Reload(context.Background())
	if res.Err != nil {
		t.Fatalf("Reload() error = %v", res.Err)
	}
	if len(res.Added) != 1 || res.Added[0] != "/b" {
		t.Errorf("Added = %v, want [/b]", res.Added)
	}
	if !r.Match(router.Location{Name: "b"}).IsMatched() {
		t.Error("route b was not added")
	}

	// A second reload of the same file adds nothing.
	res = w.Reload(context.Background())
	if len(res.Added) != 0 {
		t.Errorf("Added = %v, want none", res.Added)
	}
}

func TestReloadReportsRemovedRoutes(t *testing.T) {
	w, r, path := newTestWatcher(t, "routes:\n  - path: /a\n")
	defer w.watcher.Close()

	writeRoutes(t, path, "routes:\n  - path: /c\n")
	res := w.Reload(context.Background())
	if len(res.Removed) != 1 || res.Removed[0] != "/a" {
		t.Errorf("Removed = %v, want [/a]", res.Removed)
	}
	if !r.Match(router.Path("/a")).IsMatched() {
		t.Error("/a no longer matches, want removed routes kept")
	}
}

func TestReloadError(t *testing.T) {
	w, _, path := newTestWatcher(t, "routes:\n  - path: /a\n")
	defer w.watcher.Close()

	writeRoutes(t, path, "routes:\n  - path: /a\n  - path: /bad/:id([)\n")
	res := w.Reload(context.Background())
	if res.Err == nil {
		t.Fatal("Reload() error = nil, want a compile error")
	}
	if len(res.Added) != 0 {
		t.Errorf("Added = %v, want none", res.Added)
	}

	// The failed route is retried on the next reload.
	writeRoutes(t, path, "routes:\n  - path: /a\n  - path: /bad/:id\n")
	res = w.Reload(context.Background())
	if res.Err != nil || len(res.Added) != 1 {
		t.Errorf("Reload() = %+v, want /bad/:id added", res)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	w, r, path := newTestWatcher(t, "routes:\n  - path: /a\n")

	reloads := make(chan Reload, 4)
	w.OnReload(func(res Reload) {
		select {
		case reloads <- res:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	writeRoutes(t, path, "routes:\n  - path: /a\n  - path: /live\n")

	// A truncating write can be seen half done, so wait for the reload
	// that picks up the new route.
	deadline := time.After(5 * time.Second)
	for added := false; !added; {
		select {
		case res := <-reloads:
			added = len(res.Added) == 1 && res.Added[0] == "/live"
		case <-deadline:
			t.Fatal("no reload added /live after writing the route table")
		}
	}
	if !r.Match(router.Path("/live")).IsMatched() {
		t.Error("/live does not match after reload")
	}

	w.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() = %v, want nil after Stop", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
	if w.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestNewRouteWatcherMissingDir(t *testing.T) {
	_, err := NewRouteWatcher(nil, WatcherConfig{Path: filepath.Join(t.TempDir(), "nope", "routes.yaml")})
	if err == nil {
		t.Error("NewRouteWatcher() error = nil, want an error for a missing directory")
	}
}
