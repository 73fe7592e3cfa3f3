// Package telemetry provides router observers that export navigation
// metrics to Prometheus and navigation spans to OpenTelemetry.
//
// Both types implement router.Observer:
//
//	metrics := telemetry.NewMetrics(telemetry.WithNamespace("shop"))
//	tracing := telemetry.NewTracing(telemetry.WithTracerName("shop-router"))
//
//	r, err := router.New(routes,
//	    router.WithObserver(metrics),
//	    router.WithObserver(tracing),
//	)
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
package telemetry
