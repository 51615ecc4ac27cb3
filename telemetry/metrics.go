// Package telemetry is the scheduler/provider telemetry named in the domain
// stack: OpenTelemetry metric instruments for the runner/server layers,
// exported over Prometheus so the engine's behavior is observable without
// changing anything it returns. server.API records active sessions and the
// status each Driver.Advance stops at; runner.Driver records nothing, and
// the step, provider and tool instruments have no caller in this module.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/vibelang-org/vibe"

// Metrics holds every OpenTelemetry instrument this package defines for the
// runner/server layers. All fields are safe for concurrent use since the
// underlying OTel instruments handle their own synchronization.
type Metrics struct {
	// StepDuration tracks wall time spent inside one RunUntilPause call,
	// i.e. one batch of Step invocations between suspensions.
	StepDuration metric.Float64Histogram

	// ProviderDuration tracks latency of one engine.ProviderClient.Complete
	// call, labeled by provider/model.
	ProviderDuration metric.Float64Histogram

	// ToolDuration tracks latency of one engine.ToolExecutor.Execute call.
	ToolDuration metric.Float64Histogram

	// ProviderRequests counts completed provider calls by provider and
	// status ("ok" | "error").
	ProviderRequests metric.Int64Counter

	// ToolCalls counts tool invocations by tool name and status.
	ToolCalls metric.Int64Counter

	// SessionsActive tracks the number of RuntimeStates server.API currently
	// holds open.
	SessionsActive metric.Int64UpDownCounter

	// SuspensionsByStatus counts how often a Driver.Advance call stopped at
	// each awaiting_* status, labeled by status.
	SuspensionsByStatus metric.Int64Counter
}

var latencyBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// NewMetrics builds every instrument from mp, returning the first
// registration error encountered.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StepDuration, err = m.Float64Histogram("vibe.step.duration",
		metric.WithDescription("Wall time of one RunUntilPause batch."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ProviderDuration, err = m.Float64Histogram("vibe.provider.duration",
		metric.WithDescription("Latency of one ProviderClient.Complete call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ToolDuration, err = m.Float64Histogram("vibe.tool.duration",
		metric.WithDescription("Latency of one ToolExecutor.Execute call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("vibe.provider.requests",
		metric.WithDescription("Total provider completions by provider and status."),
	); err != nil {
		return nil, err
	}
	if met.ToolCalls, err = m.Int64Counter("vibe.tool.calls",
		metric.WithDescription("Total tool invocations by tool name and status."),
	); err != nil {
		return nil, err
	}
	if met.SessionsActive, err = m.Int64UpDownCounter("vibe.sessions.active",
		metric.WithDescription("Number of RuntimeStates currently held open by server.API."),
	); err != nil {
		return nil, err
	}
	if met.SuspensionsByStatus, err = m.Int64Counter("vibe.suspensions",
		metric.WithDescription("Total suspensions observed, by status."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns the package-level Metrics instance, built on first call
// from otel.GetMeterProvider(). Panics if instrument registration fails,
// which should not happen against the global provider.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("telemetry: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordProvider records one provider completion's latency and outcome.
func (m *Metrics) RecordProvider(ctx context.Context, provider string, seconds float64, status string) {
	m.ProviderDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("provider", provider)))
	m.ProviderRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}

// RecordTool records one tool invocation's latency and outcome.
func (m *Metrics) RecordTool(ctx context.Context, tool string, seconds float64, status string) {
	m.ToolDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("tool", tool)))
	m.ToolCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("status", status),
	))
}

// RecordSuspension records one terminal or awaiting_* status reached by a
// Driver.Advance call.
func (m *Metrics) RecordSuspension(ctx context.Context, status string) {
	m.SuspensionsByStatus.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
