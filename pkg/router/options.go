package router

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/vango-dev/vroute/internal/clock"
	"github.com/vango-dev/vroute/pkg/query"
)

// Option configures a Router.
type Option func(*options)

type options struct {
	base         string
	mode         Mode
	logger       *slog.Logger
	history      History
	instances    Instances
	scheduler    Scheduler
	clock        clock.Clock
	pollInterval time.Duration
	codec        query.Codec
	observers    []Observer
	ctx          context.Context
}

func defaultOptions() *options {
	return &options{
		mode:         ModeAbstract,
		logger:       slog.Default().With("component", "router"),
		scheduler:    immediate,
		clock:        clock.Real(),
		pollInterval: DefaultPollInterval,
		codec:        query.Standard,
		ctx:          context.Background(),
	}
}

// WithBase sets the prefix of generated hrefs.
func WithBase(base string) Option {
	return func(o *options) { o.base = normalizeBase(base) }
}

// WithMode selects how hrefs are built.
func WithMode(mode Mode) Option {
	return func(o *options) { o.mode = mode }
}

// WithLogger sets the logger for warnings and navigation events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHistory sets the history backend. The default is a MemoryHistory.
func WithHistory(h History) Option {
	return func(o *options) { o.history = h }
}

// WithInstances sets the lookup used to find live view instances for
// leave and update guards and AfterEnter callbacks.
func WithInstances(i Instances) Option {
	return func(o *options) { o.instances = i }
}

// WithScheduler sets where AfterEnter callbacks are deferred to. The
// default runs them right after the commit.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithClock sets the clock used for polling and navigation timing.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithPollInterval sets how often AfterEnter callbacks retry.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithQueryCodec replaces the query string codec.
func WithQueryCodec(c query.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithObserver adds a navigation observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithContext sets the context passed to lazy component loaders.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// normalizeBase roots base and drops its trailing slash. "/" becomes "".
func normalizeBase(base string) string {
	if base == "" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimSuffix(base, "/")
}
