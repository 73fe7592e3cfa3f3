package main

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vango-dev/vroute/internal/config"
	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
)

// globals are the flags shared by every command.
type globals struct {
	configPath string
	routes     string
	base       string
	mode       string
	logLevel   string
	noColor    bool
}

func (g *globals) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)
	fs.StringVarP(&g.configPath, "config", "c", "", "Configuration file (default: routectl.yaml, or $"+config.EnvConfig+")")
	fs.StringVarP(&g.routes, "routes", "r", "", "Route table file or s3://bucket/key (overrides config)")
	fs.StringVar(&g.base, "base", "", "Base path for hrefs (overrides config)")
	fs.StringVar(&g.mode, "mode", "", "History mode: abstract, history or hash (overrides config)")
	fs.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	fs.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	return fs
}

// session is a loaded configuration and route table.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	source string
	routes []router.RouteConfig
}

// load reads the configuration and the route table, applying flag
// overrides. Logs go to logOut.
func (g *globals) load(ctx context.Context, logOut io.Writer) (*session, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}

	if g.base != "" {
		cfg.Base = g.base
	}
	if g.mode != "" {
		cfg.Mode = g.mode
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	source := cfg.RoutesSource()
	if g.routes != "" {
		source = g.routes
	}

	logger := newLogger(cfg, logOut)

	var opts []config.SourceOption
	if config.IsS3Source(source) {
		opts = append(opts, config.WithS3Client(config.NewS3Client(cfg.S3)))
	}
	routes, err := config.LoadRoutes(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, logger: logger, source: source, routes: routes}, nil
}

// newRouter builds a router over the session's routes.
func (s *session) newRouter(opts ...router.Option) (*router.Router, error) {
	base := []router.Option{
		router.WithLogger(s.logger),
		router.WithBase(s.cfg.Base),
		router.WithMode(s.cfg.RouterMode()),
	}
	r, err := router.New(s.routes, append(base, opts...)...)
	if err != nil {
		return nil, errors.New(errors.CodeRoutesInvalid).Wrap(err).WithRoutes(s.source)
	}
	return r, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	var h slog.Handler
	if strings.EqualFold(cfg.Log.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// parseLocation reads a location argument: a path with optional query
// and hash, or name:<route name>. params apply to named locations, or
// to the current route when arg is empty.
func parseLocation(arg string, params map[string]string) router.RawLocation {
	if name, ok := strings.CutPrefix(arg, "name:"); ok {
		return router.Location{Name: name, Params: router.Params(params)}
	}
	if arg == "" {
		return router.Location{Params: router.Params(params)}
	}
	return router.Path(arg)
}
