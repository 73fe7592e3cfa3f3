package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute/internal/config"
	"github.com/vango-dev/vroute/internal/dev"
	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/telemetry"
	"github.com/vango-dev/vroute/pkg/wshistory"
)

// inspector serves a router's table and navigation state over HTTP.
type inspector struct {
	router   *router.Router
	history  *wshistory.History
	source   string
	registry *prometheus.Registry
	logger   *slog.Logger
	timeout  time.Duration
}

func (in *inspector) handler(cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/routes", in.handleRoutes)
		r.Get("/match", in.handleMatch)
		r.Get("/resolve", in.handleResolve)
		r.Get("/current", in.handleCurrent)
		r.Post("/navigate", in.handleNavigate)
	})
	r.Handle(cfg.Serve.WebSocketPath, in.history)
	if cfg.MetricsEnabled() && in.registry != nil {
		r.Handle(cfg.Serve.MetricsPath, promhttp.HandlerFor(in.registry, promhttp.HandlerOpts{}))
	}
	return r
}

func (in *inspector) handleRoutes(w http.ResponseWriter, req *http.Request) {
	table := listRoutes(in.router, in.source)
	etag := strconv.Quote(table.Fingerprint)
	w.Header().Set("ETag", etag)
	if req.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	in.writeJSON(w, http.StatusOK, table)
}

func (in *inspector) handleMatch(w http.ResponseWriter, req *http.Request) {
	to := req.URL.Query().Get("to")
	if to == "" {
		in.writeError(w, http.StatusBadRequest, "missing to parameter")
		return
	}
	in.writeJSON(w, http.StatusOK, viewRoute(in.router.Match(router.Path(to))))
}

func (in *inspector) handleResolve(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	to := q.Get("to")
	if to == "" {
		in.writeError(w, http.StatusBadRequest, "missing to parameter")
		return
	}
	appendPath, _ := strconv.ParseBool(q.Get("append"))
	res := in.router.Resolve(router.Path(to), nil, appendPath)
	in.writeJSON(w, http.StatusOK, resolvedView{
		Href:     res.Href,
		Location: res.Location.Path,
		Route:    viewRoute(res.Route),
	})
}

func (in *inspector) handleCurrent(w http.ResponseWriter, req *http.Request) {
	in.writeJSON(w, http.StatusOK, viewRoute(in.router.CurrentRoute()))
}

type navigateRequest struct {
	To      string `json:"to"`
	Replace bool   `json:"replace"`
}

type navigateResponse struct {
	Outcome string    `json:"outcome"`
	Error   string    `json:"error,omitempty"`
	Current routeView `json:"current"`
}

func (in *inspector) handleNavigate(w http.ResponseWriter, req *http.Request) {
	var body navigateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.To == "" {
		in.writeError(w, http.StatusBadRequest, "body must be {\"to\": \"/path\"}")
		return
	}

	var opts []router.NavigateOption
	if body.Replace {
		opts = append(opts, router.WithReplace())
	}
	ctx, cancel := context.WithTimeout(req.Context(), in.timeout)
	defer cancel()
	_, err := in.router.NavigateWait(ctx, router.Path(body.To), opts...)

	resp := navigateResponse{
		Outcome: telemetry.Outcome(err),
		Current: viewRoute(in.router.CurrentRoute()),
	}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = http.StatusConflict
		if stderrors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
	}
	in.writeJSON(w, status, resp)
}

func (in *inspector) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		in.logger.Debug("write response failed", "error", err)
	}
}

func (in *inspector) writeError(w http.ResponseWriter, status int, msg string) {
	in.writeJSON(w, status, map[string]string{"error": msg})
}

// originChecker allows same-origin requests and the listed origins.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		if origin == "" || origin == "http://"+req.Host || origin == "https://"+req.Host {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// newInspector builds the serving router and its inspector.
func newInspector(s *session) (*inspector, error) {
	hist := wshistory.New(
		wshistory.WithBase(s.cfg.Base),
		wshistory.WithLogger(s.logger),
		wshistory.WithCheckOrigin(originChecker(s.cfg.Serve.AllowedOrigins)),
	)

	registry := prometheus.NewRegistry()
	opts := []router.Option{
		router.WithHistory(hist),
		router.WithObserver(telemetry.NewTracing()),
	}
	if s.cfg.MetricsEnabled() {
		opts = append(opts, router.WithObserver(telemetry.NewMetrics(telemetry.WithRegistry(registry))))
	}
	r, err := s.newRouter(opts...)
	if err != nil {
		return nil, err
	}
	return &inspector{
		router:   r,
		history:  hist,
		source:   s.source,
		registry: registry,
		logger:   s.logger,
		timeout:  10 * time.Second,
	}, nil
}

func serveCmd(g *globals) *cobra.Command {
	var (
		port  int
		host  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route inspector",
		Long: `Serve an HTTP inspector for the route table.

Endpoints:
  GET  /api/routes          route table (ETag is the table fingerprint)
  GET  /api/match?to=       match a location
  GET  /api/resolve?to=     resolve a location to an href
  GET  /api/current         the current route
  POST /api/navigate        {"to": "/path", "replace": false}
  GET  /ws                  WebSocket history for browsers
  GET  /metrics             Prometheus metrics

With --watch, routes added to the table file are registered without a
restart.

Examples:
  routectl serve
  routectl serve --port 8080 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if port > 0 {
				s.cfg.Serve.Port = port
			}
			if host != "" {
				s.cfg.Serve.Host = host
			}
			if watch {
				s.cfg.Watch.Enabled = true
			}

			in, err := newInspector(s)
			if err != nil {
				return err
			}
			in.router.Start()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			if s.cfg.Watch.Enabled {
				if config.IsS3Source(s.source) {
					warn(out, "watching is not supported for %s", s.source)
				} else {
					w, err := dev.NewRouteWatcher(in.router, dev.WatcherConfig{
						Path:     s.source,
						Debounce: s.cfg.DebounceDuration(),
						Initial:  s.routes,
						Logger:   s.logger,
					})
					if err != nil {
						return err
					}
					w.OnReload(func(res dev.Reload) {
						if res.Err == nil && len(res.Added) > 0 {
							success(out, "added %d routes, fingerprint %s", len(res.Added), in.router.Registry().Fingerprint()[:12])
						}
					})
					go w.Start(ctx)
				}
			}

			srv := &http.Server{
				Addr:              s.cfg.ServeAddress(),
				Handler:           in.handler(s.cfg),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			success(out, "inspector listening on http://%s", s.cfg.ServeAddress())
			info(out, "routes from %s", s.source)

			select {
			case err := <-errCh:
				if !stderrors.Is(err, http.ErrServerClosed) {
					return errors.New(errors.CodeServeFailed).Wrap(err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			in.history.Close()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errors.New(errors.CodeServeFailed).Wrap(err)
			}
			fmt.Fprintln(out)
			info(out, "stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Register routes added to the table file")

	return cmd
}
