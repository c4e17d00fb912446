package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Getters(t *testing.T) {
	t.Parallel()

	empty := &Config{}
	assert.Equal(t, DefaultServiceName, empty.GetServiceName())
	assert.Equal(t, "unknown", empty.GetServiceVersion())
	assert.Equal(t, DefaultEndpoint, empty.GetEndpoint())

	blank := &Config{ServiceName: "   "}
	assert.Equal(t, DefaultServiceName, blank.GetServiceName())

	set := &Config{ServiceName: "pyxis-stage", ServiceVersion: "1.2.3", Endpoint: "collector:4318"}
	assert.Equal(t, "pyxis-stage", set.GetServiceName())
	assert.Equal(t, "1.2.3", set.GetServiceVersion())
	assert.Equal(t, "collector:4318", set.GetEndpoint())
}

func TestTracingConfig_GetSampling(t *testing.T) {
	t.Parallel()

	var nilCfg *TracingConfig
	assert.InDelta(t, DefaultSampling, nilCfg.GetSampling(), 1e-9)
	assert.InDelta(t, DefaultSampling, (&TracingConfig{}).GetSampling(), 1e-9)
	assert.InDelta(t, 0.25, (&TracingConfig{Sampling: 0.25}).GetSampling(), 1e-9)
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		config      *Config
		wantTracing bool
		wantMetrics bool
	}{
		{name: "nil", config: nil},
		{name: "globally disabled", config: &Config{
			Tracing: &TracingConfig{Enabled: true},
			Metrics: &MetricsConfig{Enabled: true},
		}},
		{name: "enabled without sections", config: &Config{Enabled: true}},
		{name: "tracing only", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true},
		}, wantTracing: true},
		{name: "both", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true},
			Metrics: &MetricsConfig{Enabled: true},
		}, wantTracing: true, wantMetrics: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantTracing, tt.config.TracingEnabled())
			assert.Equal(t, tt.wantMetrics, tt.config.MetricsEnabled())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{name: "nil config", config: nil},
		{name: "disabled config is not checked", config: &Config{
			Endpoint: "http://collector:4318",
			Tracing:  &TracingConfig{Enabled: true, Sampling: 3},
		}},
		{name: "valid", config: &Config{
			Enabled:  true,
			Endpoint: "collector:4318",
			Headers:  map[string]string{"Authorization": "Bearer token"},
			Tracing:  &TracingConfig{Enabled: true, Sampling: 1},
			Metrics:  &MetricsConfig{Enabled: true},
		}},
		{name: "endpoint with scheme", config: &Config{
			Enabled:  true,
			Endpoint: "https://collector:4318",
		}, wantErr: "without a scheme"},
		{name: "empty header name", config: &Config{
			Enabled: true,
			Headers: map[string]string{" ": "x"},
		}, wantErr: "header names"},
		{name: "negative sampling", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true, Sampling: -0.1},
		}, wantErr: "sampling must be between"},
		{name: "sampling above one", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true, Sampling: 1.5},
		}, wantErr: "sampling must be between"},
		{name: "sampling ignored when tracing disabled", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Sampling: 1.5},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.config.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
