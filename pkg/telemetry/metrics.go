package telemetry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vroute/pkg/router"
)

// MetricsConfig configures the Prometheus navigation metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vroute").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// Now returns the current time (default: time.Now).
	Now func() time.Time
}

// MetricsOption configures the Prometheus navigation metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// WithNow sets the time source used to measure durations. It should
// agree with the router's clock.
func WithNow(now func() time.Time) MetricsOption {
	return func(c *MetricsConfig) {
		if now != nil {
			c.Now = now
		}
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vroute",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
		Now:       time.Now,
	}
}

// Outcome label values besides the navigation failure reasons.
const (
	OutcomeCommitted = "committed"
	OutcomeError     = "error"
)

// Metrics is a router.Observer recording Prometheus metrics:
//   - vroute_navigations_total: Counter of navigations by route and outcome
//   - vroute_navigation_duration_seconds: Histogram of time from start to settle
//   - vroute_navigations_in_flight: Gauge of unsettled navigations
//   - vroute_navigation_failures_total: Counter of failed navigations by route
//
// The route label is the path template of the target's leaf record, or
// "unmatched". Metrics registers its collectors on construction, so
// create one per registry.
type Metrics struct {
	navigations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	inFlight    prometheus.Gauge
	failures    *prometheus.CounterVec
	now         func() time.Time
}

// NewMetrics creates and registers the navigation metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of settled navigations",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "outcome"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration from start to commit or abort in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_in_flight",
			Help:        "Number of navigations waiting on guards",
			ConstLabels: config.ConstLabels,
		}),

		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_failures_total",
			Help:        "Total number of navigations stopped by a guard error or panic",
			ConstLabels: config.ConstLabels,
		}, []string{"route"}),

		now: config.Now,
	}
}

// ObserveNavigation implements router.Observer.
func (m *Metrics) ObserveNavigation(nav router.Navigation) func(error) {
	route := RouteLabel(nav.To)
	m.inFlight.Inc()

	return func(err error) {
		m.inFlight.Dec()
		m.duration.WithLabelValues(route).Observe(m.now().Sub(nav.Started).Seconds())

		outcome := Outcome(err)
		m.navigations.WithLabelValues(route, outcome).Inc()
		if outcome == router.Failed.String() {
			m.failures.WithLabelValues(route).Inc()
		}
	}
}

// RouteLabel returns the leaf path template of r, or "unmatched". It
// keeps label cardinality bounded by the route table.
func RouteLabel(r *router.Route) string {
	if r == nil || !r.IsMatched() {
		return "unmatched"
	}
	matched := r.Matched()
	return matched[len(matched)-1].Path()
}

// Outcome classifies how a navigation settled: OutcomeCommitted, the
// failure reason ("duplicated", "aborted", "cancelled", "redirected",
// "failed"), or OutcomeError for errors from outside the router.
func Outcome(err error) string {
	if err == nil {
		return OutcomeCommitted
	}
	var ne *router.NavigationError
	if errors.As(err, &ne) {
		return ne.Reason.String()
	}
	return OutcomeError
}
