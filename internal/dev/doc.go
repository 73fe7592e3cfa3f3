// Package dev reloads route tables while routectl is serving.
//
// RouteWatcher watches a route table file with fsnotify. After a burst
// of writes settles it re-reads the file and passes the top-level routes
// it has not seen before to AddRoutes. The registry is additive, so
// edited or deleted routes are reported and keep their old definition
// until the process restarts.
//
// # Usage
//
//	w, err := dev.NewRouteWatcher(r, dev.WatcherConfig{
//	    Path:     "routes.yaml",
//	    Debounce: 100 * time.Millisecond,
//	    Initial:  routes,
//	})
//	if err != nil {
//	    return err
//	}
//	w.OnReload(func(res dev.Reload) { ... })
//	go w.Start(ctx)
package dev
