// Package observe provides observability primitives for CaseClock:
// OpenTelemetry metrics with a Prometheus exporter bridge and the HTTP
// handler that serves them.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A package-level
// default [Metrics] instance ([DefaultMetrics]) is provided for convenience;
// tests should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all CaseClock metrics.
const meterName = "github.com/caseclockapp/caseclock-mvp"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// Commands counts processed voice commands. Use with attributes:
	//   attribute.String("intent", ...), attribute.String("outcome", ...)
	Commands metric.Int64Counter

	// ResolverScore tracks the best fuzzy-match score (0–100) per
	// resolution, whether or not the match was accepted.
	ResolverScore metric.Float64Histogram

	// ResolverFallbacks counts resolutions that fell back to the literal
	// fragment because no known case scored above the threshold.
	ResolverFallbacks metric.Int64Counter

	// LoggedDuration tracks the length of completed billable intervals in
	// seconds.
	LoggedDuration metric.Float64Histogram

	// PersistFailures counts log-store writes that failed after the
	// in-memory state was already updated.
	PersistFailures metric.Int64Counter

	// ListenWindows counts completed listening windows. Use with attribute:
	//   attribute.String("outcome", ...)
	ListenWindows metric.Int64Counter
}

// scoreBuckets covers the 0–100 similarity scale.
var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 75, 80, 85, 90, 95, 100}

// durationBuckets covers billable-interval lengths in seconds, from a
// mis-click to a full working day.
var durationBuckets = []float64{
	10, 60, 300, 900, 1800, 3600, 7200, 14400, 28800,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Commands, err = m.Int64Counter("caseclock.commands",
		metric.WithDescription("Total processed voice commands by intent and outcome."),
	); err != nil {
		return nil, err
	}
	if met.ResolverScore, err = m.Float64Histogram("caseclock.resolver.score",
		metric.WithDescription("Best fuzzy-match score per case resolution (0-100)."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ResolverFallbacks, err = m.Int64Counter("caseclock.resolver.fallbacks",
		metric.WithDescription("Resolutions that fell back to the literal fragment."),
	); err != nil {
		return nil, err
	}
	if met.LoggedDuration, err = m.Float64Histogram("caseclock.logged.duration",
		metric.WithDescription("Length of completed billable intervals."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PersistFailures, err = m.Int64Counter("caseclock.persist.failures",
		metric.WithDescription("Log-store writes that failed after the in-memory update."),
	); err != nil {
		return nil, err
	}
	if met.ListenWindows, err = m.Int64Counter("caseclock.listen.windows",
		metric.WithDescription("Completed listening windows by outcome."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordCommand records one processed command with the standard attribute
// set.
func (m *Metrics) RecordCommand(ctx context.Context, intent, outcome string) {
	m.Commands.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("intent", intent),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordResolution records one case resolution: the best score, and a
// fallback increment when no registry entry was accepted.
func (m *Metrics) RecordResolution(ctx context.Context, score int, fromRegistry bool) {
	m.ResolverScore.Record(ctx, float64(score))
	if !fromRegistry {
		m.ResolverFallbacks.Add(ctx, 1)
	}
}

// RecordListenWindow records one completed listening window by outcome.
func (m *Metrics) RecordListenWindow(ctx context.Context, outcome string) {
	m.ListenWindows.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}
