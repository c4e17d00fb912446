package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// collect reads every metric recorded under the given meter name
func collect(t *testing.T, reader *sdkmetric.ManualReader, meterName string) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := map[string]metricdata.Metrics{}
	for _, scope := range rm.ScopeMetrics {
		if scope.Scope.Name != meterName {
			continue
		}
		for _, m := range scope.Metrics {
			found[m.Name] = m
		}
	}
	return found
}

func TestNewToolMetrics(t *testing.T) {
	t.Parallel()

	metrics, err := NewToolMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, metrics)

	mp := sdkmetric.NewMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err = NewToolMetrics(mp)
	require.NoError(t, err)
	require.NotNil(t, metrics)
	assert.NotNil(t, metrics.callsTotal)
	assert.NotNil(t, metrics.callDuration)
	assert.NotNil(t, metrics.inFlight)
}

func TestToolMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var metrics *ToolMetrics
	assert.NotPanics(t, func() {
		metrics.CallStarted(context.Background(), "search_images")
		metrics.RecordCall(context.Background(), "search_images", "success", time.Second)
	})
}

func TestToolMetrics_RecordCall(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewToolMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.CallStarted(ctx, "search_images")
	metrics.RecordCall(ctx, "search_images", "success", 120*time.Millisecond)
	metrics.CallStarted(ctx, "get_image_details")
	metrics.RecordCall(ctx, "get_image_details", "not_found", 40*time.Millisecond)
	metrics.CallStarted(ctx, "get_image_details")

	found := collect(t, reader, ToolMetricsMeterName)

	calls, ok := found["pyxis_mcp_tool_calls_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, calls.DataPoints, 2)
	for _, dp := range calls.DataPoints {
		assert.Equal(t, int64(1), dp.Value)
		tool, _ := dp.Attributes.Value(attribute.Key("tool"))
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		switch tool.AsString() {
		case "search_images":
			assert.Equal(t, "success", outcome.AsString())
		case "get_image_details":
			assert.Equal(t, "not_found", outcome.AsString())
		default:
			t.Errorf("unexpected tool attribute %q", tool.AsString())
		}
	}

	duration, ok := found["pyxis_mcp_tool_call_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, duration.DataPoints, 2)

	inFlight, ok := found["pyxis_mcp_tool_calls_in_flight"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range inFlight.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(1), total, "one call is still in flight")
}
