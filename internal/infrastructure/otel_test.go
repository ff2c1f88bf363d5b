package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTelInitialization(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Default configuration: metrics on, tracing off
	providers, err := InitializeOTel(nil, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfiguration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	tests := []struct {
		name   string
		config *OTelConfig
	}{
		{
			name: "tracing_enabled",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "stdout",
				MetricExporter: "none",
				EnableMetrics:  false,
				EnableTracing:  true,
				SampleRatio:    1.0,
			},
		},
		{
			name: "everything_disabled",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "none",
				MetricExporter: "none",
				EnableMetrics:  false,
				EnableTracing:  false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, logger)
			require.NoError(t, err)
			require.NotNil(t, providers)

			if tt.config.EnableTracing && tt.config.TraceExporter != "none" {
				assert.NotNil(t, providers.TracerProvider)
				assert.NotNil(t, providers.Tracer)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

func TestOTelRejectsUnknownExporters(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	_, err := InitializeOTel(&OTelConfig{
		EnableTracing: true,
		TraceExporter: "jaeger",
	}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")

	_, err = InitializeOTel(&OTelConfig{
		EnableMetrics:  true,
		MetricExporter: "statsd",
	}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported metric exporter")
}

func TestTraceCorrelation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "test-service",
		ServiceVersion: "v1.0.0",
		Environment:    "test",
		TraceExporter:  "stdout",
		MetricExporter: "none",
		EnableTracing:  true,
		SampleRatio:    1.0,
	}, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	// Span helpers only act on recording spans and must not panic
	AddSpanEvent(ctx, "test.event", map[string]interface{}{
		"string_attr": "value",
		"int_attr":    42,
		"float_attr":  3.14,
		"bool_attr":   true,
		"other_attr":  time.Second,
	})
	RecordSpanError(ctx, errors.New("boom"))
	assert.True(t, span.IsRecording())
}

func TestTraceIDFromContext_NoSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestCreateAppMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateAppMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.HTTPRequestDuration)
	assert.NotNil(t, metrics.HTTPActiveRequests)
	assert.NotNil(t, metrics.CollectionRunsTotal)
	assert.NotNil(t, metrics.CollectionRunDuration)
	assert.NotNil(t, metrics.CollectionErrors)
	assert.NotNil(t, metrics.ActiveCollections)
	assert.NotNil(t, metrics.SourceFetchDuration)
	assert.NotNil(t, metrics.ObservationsFetched)
	assert.NotNil(t, metrics.ObservationsStored)
	assert.NotNil(t, metrics.AnalysisRequestsTotal)
	assert.NotNil(t, metrics.AnalysisDuration)
}

func TestRecordHelpers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateAppMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()

	RecordCollectionRun(ctx, metrics, 3, 2*time.Second, nil)
	RecordCollectionRun(ctx, metrics, 3, time.Second, errors.New("provider down"))
	RecordSourceCollection(ctx, metrics, "FRED", 100, 95, 800*time.Millisecond, nil)
	RecordSourceCollection(ctx, metrics, "ECOS", 0, 0, 50*time.Millisecond, errors.New("timeout"))
	RecordActiveCollectionChange(ctx, metrics, 1)
	RecordActiveCollectionChange(ctx, metrics, -1)
	RecordAnalysisRequest(ctx, metrics, "compare", 10*time.Millisecond, nil)

	// Nil metrics are tolerated everywhere
	RecordCollectionRun(ctx, nil, 0, 0, nil)
	RecordSourceCollection(ctx, nil, "FRED", 0, 0, 0, nil)
	RecordActiveCollectionChange(ctx, nil, 1)
	RecordAnalysisRequest(ctx, nil, "series", 0, nil)
}

func TestPrometheusEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}

func TestSystemMetricsCollector(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	collector, err := NewSystemMetricsCollector(providers.Meter, time.Minute)
	require.NoError(t, err)

	stats := collector.GetCurrentStats(context.Background())
	require.NotNil(t, stats)
	assert.Positive(t, stats.GoRoutines)
	assert.Positive(t, stats.MemoryUsage)
	assert.False(t, stats.Timestamp.IsZero())

	// Start/Stop must not deadlock
	done := make(chan struct{})
	go func() {
		collector.Start(context.Background())
		close(done)
	}()
	collector.Stop()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("collector did not stop")
	}
}

func BenchmarkMetricOperations(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(b, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateAppMetrics(providers.Meter)
	require.NoError(b, err)

	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	b.Run("counter_increment", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			metrics.HTTPRequestsTotal.Add(ctx, 1)
		}
	})

	b.Run("histogram_record", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			metrics.HTTPRequestDuration.Record(ctx, float64(i)*0.001)
		}
	})
}
