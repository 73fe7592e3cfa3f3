package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vroute/pkg/router"
)

const defaultTracerName = "vroute"

// TracingConfig configures the OpenTelemetry navigation observer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "vroute").
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: the global provider from otel.GetTracerProvider.
	TracerProvider trace.TracerProvider

	// Context is the parent of every navigation span
	// (default: context.Background()).
	Context context.Context

	// IncludeQuery records the full path including query and hash instead
	// of the path alone. Query strings may contain sensitive values, so it
	// is off by default.
	IncludeQuery bool

	// Filter determines which navigations to trace.
	// If nil, all navigations are traced.
	Filter func(nav router.Navigation) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(nav router.Navigation) []attribute.KeyValue
}

// TracingOption configures the OpenTelemetry navigation observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.TracerProvider = tp
	}
}

// WithParentContext sets the context spans are started from.
func WithParentContext(ctx context.Context) TracingOption {
	return func(c *TracingConfig) {
		c.Context = ctx
	}
}

// WithIncludeQuery records full paths instead of bare paths.
func WithIncludeQuery(include bool) TracingOption {
	return func(c *TracingConfig) {
		c.IncludeQuery = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(nav router.Navigation) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(nav router.Navigation) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracing is a router.Observer that records one span per navigation.
//
// Spans are named "navigate <route>" after the target's leaf template and
// carry the navigation ID, source and target. Committed navigations end
// with status Ok; failed ones record the guard error with status Error.
// Other stops (aborted, redirected...) set vroute.outcome and leave the
// status unset.
type Tracing struct {
	config TracingConfig
	tracer trace.Tracer
}

// NewTracing creates the observer.
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerProvider == nil {
		config.TracerProvider = otel.GetTracerProvider()
	}
	if config.Context == nil {
		config.Context = context.Background()
	}

	return &Tracing{
		config: config,
		tracer: config.TracerProvider.Tracer(config.TracerName),
	}
}

// ObserveNavigation implements router.Observer.
func (t *Tracing) ObserveNavigation(nav router.Navigation) func(error) {
	if t.config.Filter != nil && !t.config.Filter(nav) {
		return nil
	}

	route := RouteLabel(nav.To)
	attrs := []attribute.KeyValue{
		attribute.String("vroute.navigation_id", nav.ID),
		attribute.String("vroute.route", route),
		attribute.String("vroute.from", t.describe(nav.From)),
		attribute.String("vroute.to", t.describe(nav.To)),
	}
	if name := nav.To.Name(); name != "" {
		attrs = append(attrs, attribute.String("vroute.name", name))
	}
	if t.config.AttributeExtractor != nil {
		attrs = append(attrs, t.config.AttributeExtractor(nav)...)
	}

	_, span := t.tracer.Start(
		t.config.Context,
		"navigate "+route,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(nav.Started),
	)

	return func(err error) {
		defer span.End()

		outcome := Outcome(err)
		span.SetAttributes(attribute.String("vroute.outcome", outcome))

		switch {
		case err == nil:
			if r := nav.To.RedirectedFrom(); r != "" {
				span.SetAttributes(attribute.String("vroute.redirected_from", r))
			}
			span.SetStatus(codes.Ok, "")
		case outcome == router.Failed.String() || outcome == OutcomeError:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
}

func (t *Tracing) describe(r *router.Route) string {
	if r == nil {
		return ""
	}
	if t.config.IncludeQuery {
		return r.FullPath()
	}
	return r.Path()
}
