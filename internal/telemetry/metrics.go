package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ToolMetricsMeterName is the name used for the tool call metrics meter
const ToolMetricsMeterName = "github.com/stacklok/pyxis-mcp-server/tools"

// ToolMetrics holds the OpenTelemetry instruments for MCP tool calls
type ToolMetrics struct {
	callsTotal   metric.Int64Counter
	callDuration metric.Float64Histogram
	inFlight     metric.Int64UpDownCounter
}

// NewToolMetrics creates the tool call instruments.
// If provider is nil, it returns nil (no-op metrics).
func NewToolMetrics(provider metric.MeterProvider) (*ToolMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ToolMetricsMeterName)

	callsTotal, err := meter.Int64Counter(
		"pyxis_mcp_tool_calls_total",
		metric.WithDescription("Total number of MCP tool calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	callDuration, err := meter.Float64Histogram(
		"pyxis_mcp_tool_call_duration_seconds",
		metric.WithDescription("Duration of MCP tool calls in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		"pyxis_mcp_tool_calls_in_flight",
		metric.WithDescription("Number of MCP tool calls currently executing"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	return &ToolMetrics{
		callsTotal:   callsTotal,
		callDuration: callDuration,
		inFlight:     inFlight,
	}, nil
}

// CallStarted marks a tool call as in flight. Pair it with RecordCall.
func (m *ToolMetrics) CallStarted(ctx context.Context, tool string) {
	if m == nil {
		return
	}
	m.inFlight.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", tool)))
}

// RecordCall records a finished tool call. Outcome is "success" or the
// error kind reported to the client.
func (m *ToolMetrics) RecordCall(ctx context.Context, tool, outcome string, duration time.Duration) {
	if m == nil {
		return
	}

	m.inFlight.Add(ctx, -1, metric.WithAttributes(attribute.String("tool", tool)))

	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("outcome", outcome),
	)
	m.callsTotal.Add(ctx, 1, attrs)
	m.callDuration.Record(ctx, duration.Seconds(), attrs)
}
