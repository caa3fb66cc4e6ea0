package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/nursabrinaas08/data-cleaning/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func metricsOnlyConfig() *OTelConfig {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = false
	cfg.TraceExporter = "none"
	return cfg
}

// TestOTelInitialization tests OpenTelemetry initialization
func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, testLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Registry)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, providers.Shutdown(ctx))
}

// TestTraceCorrelation tests trace ID correlation
func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	assert.Empty(t, TraceIDFromContext(context.Background()))
}

// TestBusinessMetrics tests business metrics creation
func TestBusinessMetrics(t *testing.T) {
	providers, err := InitializeOTel(metricsOnlyConfig(), testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.HTTPRequestDuration)
	assert.NotNil(t, metrics.HTTPActiveRequests)
	assert.NotNil(t, metrics.FilesIngested)
	assert.NotNil(t, metrics.IngestFailures)
	assert.NotNil(t, metrics.CleaningsTotal)
	assert.NotNil(t, metrics.RowsRemoved)
	assert.NotNil(t, metrics.ExportsTotal)
	assert.NotNil(t, metrics.WebSocketSessions)
	assert.NotNil(t, metrics.SystemErrors)
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordHTTPRequest(ctx, nil, "GET", "/", 200, time.Millisecond)
		RecordIngest(ctx, nil, "csv", 3, time.Millisecond, nil)
		RecordCleaning(ctx, nil, CleaningObservation{Strategy: "drop"})
		RecordExport(ctx, nil, "xlsx", 10)
		RecordSessionChange(ctx, nil, 1)
		RecordSessionMessage(ctx, nil, "upload")
		RecordSystemError(ctx, nil, "test")
	})
}

// TestPrometheusEndpoint tests that recorded metrics are served
func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(metricsOnlyConfig(), testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	require.NoError(t, RegisterRuntimeMetrics(providers.Meter, time.Now()))

	ctx := context.Background()
	RecordIngest(ctx, metrics, "csv", 4, 10*time.Millisecond, nil)
	RecordCleaning(ctx, metrics, CleaningObservation{
		Strategy:    "drop",
		Deduplicate: true,
		RowsBefore:  4,
		RowsAfter:   2,
		Duration:    time.Millisecond,
	})
	RecordExport(ctx, metrics, "csv", 42)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "dataclean_files_ingested_total")
	assert.Contains(t, text, "dataclean_rows_removed_total")
	assert.Contains(t, text, "dataclean_export_bytes")
	assert.Contains(t, text, "system_process_uptime_seconds")
	assert.Contains(t, text, "go_goroutines")
}

// TestSpanOperations tests span operations and attributes
func TestSpanOperations(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := otel.Tracer("test").Start(context.Background(), "test-span")
	defer span.End()

	SetSpanAttributes(ctx, map[string]interface{}{
		"string_attr": "test_value",
		"int_attr":    42,
		"float_attr":  3.14,
		"bool_attr":   true,
		"other_attr":  []string{"x"},
	})
	AddSpanEvent(ctx, "test.event", map[string]interface{}{
		"event_data": "test_event_value",
		"timestamp":  time.Now().Unix(),
	})
	RecordError(ctx, assert.AnError)
	RecordCleaning(ctx, nil, CleaningObservation{Strategy: "fill_mean", RowsBefore: 3, RowsAfter: 3})

	assert.True(t, span.IsRecording())
}

// TestOTelConfiguration tests different configuration options
func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		config  *OTelConfig
		wantErr bool
	}{
		{
			name: "development_config",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "development",
				TraceExporter:  "stdout",
				MetricExporter: "prometheus",
				EnableMetrics:  true,
				EnableTracing:  true,
				SampleRatio:    1.0,
			},
		},
		{
			name: "disabled_tracing",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "none",
				MetricExporter: "prometheus",
				EnableMetrics:  true,
			},
		},
		{
			name: "disabled_metrics",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "stdout",
				MetricExporter: "none",
				EnableTracing:  true,
				SampleRatio:    1.0,
			},
		},
		{
			name: "unknown_trace_exporter",
			config: &OTelConfig{
				TraceExporter: "jaeger",
				EnableTracing: true,
			},
			wantErr: true,
		},
		{
			name: "unknown_metric_exporter",
			config: &OTelConfig{
				MetricExporter: "statsd",
				EnableMetrics:  true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, testLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, providers)

			// Disabled signals still hand out no-op instruments
			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)

			if tt.config.EnableTracing {
				assert.NotNil(t, providers.TracerProvider)
			} else {
				assert.Nil(t, providers.TracerProvider)
			}

			if tt.config.EnableMetrics {
				assert.NotNil(t, providers.MeterProvider)
			} else {
				assert.Nil(t, providers.PrometheusHTTP)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.ServiceName = ""

	otelCfg := OTelConfigFrom(cfg, "1.2.3")
	assert.Equal(t, ServiceName, otelCfg.ServiceName)
	assert.Equal(t, "1.2.3", otelCfg.ServiceVersion)
	assert.Equal(t, cfg.MetricExporter, otelCfg.MetricExporter)
	assert.Equal(t, cfg.EnableTracing, otelCfg.EnableTracing)
}

func TestReadRuntimeStats(t *testing.T) {
	stats := ReadRuntimeStats(time.Now().Add(-time.Second))
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.CPUCount)
	assert.GreaterOrEqual(t, stats.Uptime, time.Second)
}
