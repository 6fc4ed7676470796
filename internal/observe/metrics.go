// Package observe provides application-wide observability primitives for the
// minutes service: OpenTelemetry metrics, tracing helpers, structured
// logging, and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. Tests should use [NewMetrics]
// with a custom [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all minutes metrics.
const meterName = "github.com/ltausch/minutes"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ExtractionDuration tracks per-stage extraction latency. Use with
	// attributes:
	//   attribute.String("stage", "summary"|"tasks"|"decisions"|"email"),
	//   attribute.String("path", "ai"|"heuristic")
	ExtractionDuration metric.Float64Histogram

	// ProviderRequests counts text-generation requests. Use with attributes:
	//   attribute.String("operation", ...), attribute.String("status", "ok"|"error")
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts text-generation failures by operation.
	ProviderErrors metric.Int64Counter

	// MeetingsProcessed counts completed Process invocations. Use with
	// attribute: attribute.String("path", "ai"|"heuristic")
	MeetingsProcessed metric.Int64Counter

	// TasksExtracted counts tasks produced across all meetings.
	TasksExtracted metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Remote
// completions dominate the upper range; heuristic extraction the lower.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ExtractionDuration, err = m.Float64Histogram("minutes.extraction.duration",
		metric.WithDescription("Latency of one extraction stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("minutes.provider.requests",
		metric.WithDescription("Total text-generation requests by operation and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("minutes.provider.errors",
		metric.WithDescription("Total text-generation failures by operation."),
	); err != nil {
		return nil, err
	}
	if met.MeetingsProcessed, err = m.Int64Counter("minutes.meetings.processed",
		metric.WithDescription("Total processed meetings by extraction path."),
	); err != nil {
		return nil, err
	}
	if met.TasksExtracted, err = m.Int64Counter("minutes.tasks.extracted",
		metric.WithDescription("Total tasks extracted across all meetings."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("minutes.http.request.duration",
		metric.WithDescription("HTTP request processing time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordExtraction records one extraction stage's latency and outcome.
// Safe to call on a nil receiver so instrumentation stays optional.
func (m *Metrics) RecordExtraction(ctx context.Context, stage, path string, seconds float64, failed bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("path", path),
	)
	m.ExtractionDuration.Record(ctx, seconds, attrs)

	status := "ok"
	if failed {
		status = "error"
		if path == "ai" {
			m.ProviderErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", stage)))
		}
	}
	if path == "ai" {
		m.ProviderRequests.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", stage),
			attribute.String("status", status),
		))
	}
}

// RecordProcessed records one completed Process invocation.
// Safe to call on a nil receiver.
func (m *Metrics) RecordProcessed(ctx context.Context, path string, taskCount int) {
	if m == nil {
		return
	}
	m.MeetingsProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String("path", path)))
	if taskCount > 0 {
		m.TasksExtracted.Add(ctx, int64(taskCount))
	}
}
