package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNewProviderConfig(t *testing.T) {
	t.Parallel()

	defaults := newProviderConfig(nil)
	assert.Equal(t, DefaultServiceName, defaults.serviceName)
	assert.Equal(t, "unknown", defaults.serviceVersion)
	assert.Equal(t, DefaultEndpoint, defaults.endpoint)
	assert.Equal(t, DefaultMetricsInterval, defaults.metricsInterval)

	cfg := newProviderConfig([]ProviderOption{
		WithServiceName("pyxis"),
		WithServiceVersion("0.3.0"),
		WithEndpoint("collector:4318"),
		WithInsecure(true),
		WithHeaders(map[string]string{"a": "b"}),
		WithMetricsInterval(time.Second),
	})
	assert.Equal(t, "pyxis", cfg.serviceName)
	assert.Equal(t, "0.3.0", cfg.serviceVersion)
	assert.Equal(t, "collector:4318", cfg.endpoint)
	assert.True(t, cfg.insecure)
	assert.Equal(t, map[string]string{"a": "b"}, cfg.headers)
	assert.Equal(t, time.Second, cfg.metricsInterval)
}

func TestNewTracerProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tp, err := NewTracerProvider(ctx)
	require.NoError(t, err)
	assert.IsType(t, tracenoop.TracerProvider{}, tp)

	tp, err = NewTracerProvider(ctx, WithTracingConfig(&TracingConfig{Enabled: false}))
	require.NoError(t, err)
	assert.IsType(t, tracenoop.TracerProvider{}, tp)

	endpoint, _ := newCollector(t)
	tp, err = NewTracerProvider(ctx,
		WithEndpoint(endpoint),
		WithInsecure(true),
		WithTracingConfig(&TracingConfig{Enabled: true, Sampling: 1}),
	)
	require.NoError(t, err)
	sdkTP, ok := tp.(*sdktrace.TracerProvider)
	require.True(t, ok)
	require.NoError(t, sdkTP.Shutdown(ctx))
}

func TestNewMeterProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mp, err := NewMeterProvider(ctx)
	require.NoError(t, err)
	assert.IsType(t, metricnoop.MeterProvider{}, mp)

	endpoint, _ := newCollector(t)
	mp, err = NewMeterProvider(ctx,
		WithEndpoint(endpoint),
		WithInsecure(true),
		WithMetricsConfig(&MetricsConfig{Enabled: true}),
		WithMetricsInterval(time.Hour),
	)
	require.NoError(t, err)
	sdkMP, ok := mp.(*sdkmetric.MeterProvider)
	require.True(t, ok)
	require.NoError(t, sdkMP.Shutdown(ctx))
}
