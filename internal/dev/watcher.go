package dev

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/vroute/internal/config"
	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
)

// RouteAdder receives routes added to the watched file.
type RouteAdder interface {
	AddRoutes(routes []router.RouteConfig) error
}

// WatcherConfig configures a RouteWatcher.
type WatcherConfig struct {
	// Path is the route table file.
	Path string

	// Debounce is the delay between the last change and the reload.
	Debounce time.Duration

	// Initial lists the routes already registered from Path.
	Initial []router.RouteConfig

	Logger *slog.Logger
}

// Reload describes one reload of the route table.
type Reload struct {
	// Added lists the top-level paths passed to AddRoutes.
	Added []string

	// Removed lists top-level paths no longer in the file. They stay
	// registered; the registry only grows.
	Removed []string

	Err error
}

// RouteWatcher reloads a route table file when it changes and adds the
// routes that are new since the last load.
type RouteWatcher struct {
	config   WatcherConfig
	target   RouteAdder
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	onReload func(Reload)

	mu      sync.Mutex
	known   map[string]bool
	timer   *time.Timer
	running bool
	stopCh  chan struct{}
}

// NewRouteWatcher starts watching config.Path. Events are handled once
// Start runs.
func NewRouteWatcher(target RouteAdder, config WatcherConfig) (*RouteWatcher, error) {
	if config.Debounce <= 0 {
		config.Debounce = 100 * time.Millisecond
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	path, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, errors.New(errors.CodeWatchFailed).Wrap(err)
	}
	config.Path = path

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.New(errors.CodeWatchFailed).Wrap(err)
	}
	// Editors often replace the file, so watch its directory.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, errors.New(errors.CodeWatchFailed).Wrap(err)
	}

	w := &RouteWatcher{
		config:  config,
		target:  target,
		watcher: fsw,
		logger:  logger.With("component", "watcher"),
		known:   make(map[string]bool),
	}
	for _, rc := range config.Initial {
		w.known[rc.Path] = true
	}
	return w, nil
}

// OnReload sets the callback run after every reload.
func (w *RouteWatcher) OnReload(fn func(Reload)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// Start handles file events until ctx is done or Stop is called.
func (w *RouteWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()
		case <-stopCh:
			w.cancelPending()
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.config.Path {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
				w.schedule(ctx)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Stop stops the watcher.
func (w *RouteWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *RouteWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *RouteWatcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.Debounce, func() {
		w.Reload(ctx)
	})
}

func (w *RouteWatcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Reload reads the file and adds the top-level routes whose paths were
// not loaded before.
func (w *RouteWatcher) Reload(ctx context.Context) Reload {
	res := w.reload(ctx)

	if res.Err != nil {
		w.logger.Warn("route table reload failed", "path", w.config.Path, "error", res.Err)
	} else {
		w.logger.Info("route table reloaded", "path", w.config.Path, "added", len(res.Added))
		if len(res.Removed) > 0 {
			w.logger.Warn("removed routes stay registered until restart", "paths", res.Removed)
		}
	}

	w.mu.Lock()
	callback := w.onReload
	w.mu.Unlock()
	if callback != nil {
		callback(res)
	}
	return res
}

func (w *RouteWatcher) reload(ctx context.Context) Reload {
	routes, err := config.LoadRoutes(ctx, w.config.Path)
	if err != nil {
		return Reload{Err: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var res Reload
	var added []router.RouteConfig
	present := make(map[string]bool, len(routes))
	for _, rc := range routes {
		present[rc.Path] = true
		if !w.known[rc.Path] {
			added = append(added, rc)
			res.Added = append(res.Added, rc.Path)
		}
	}
	for path := range w.known {
		if !present[path] {
			res.Removed = append(res.Removed, path)
		}
	}
	sort.Strings(res.Removed)

	if len(added) > 0 {
		if err := w.target.AddRoutes(added); err != nil {
			return Reload{Err: err}
		}
		for _, rc := range added {
			w.known[rc.Path] = true
		}
	}
	return res
}
