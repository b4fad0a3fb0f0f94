package observability

import (
	"context"
	"fmt"
	"testing"

	"atsmatch/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, settings MetricSettings) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), settings)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m.Data
		}
	}
	return byName
}

func counterTotal(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestTrackAIOperationWithTokens(t *testing.T) {
	m, reader := newTestMetrics(t, DefaultMetricSettings())

	err := m.TrackAIOperationWithTokens(context.Background(), "categorize", func(ctx context.Context) *AIOperationResult {
		return &AIOperationResult{TokenUsage: &TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}}
	})
	require.NoError(t, err)

	failure := fmt.Errorf("boom")
	err = m.TrackAIOperationWithTokens(context.Background(), "categorize", func(ctx context.Context) *AIOperationResult {
		return &AIOperationResult{Error: failure}
	})
	assert.ErrorIs(t, err, failure)

	data := collect(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, data["atsmatch_ai_requests_total"]))
	assert.Equal(t, int64(1), counterTotal(t, data["atsmatch_ai_errors_total"]))
	assert.Contains(t, data, "atsmatch_ai_token_usage_total")
	assert.Contains(t, data, "atsmatch_ai_processing_duration_seconds")
}

func TestBusinessMetricsToggle(t *testing.T) {
	settings := DefaultMetricSettings()
	settings.Business = false
	m, reader := newTestMetrics(t, settings)

	m.RecordKeywordSource(context.Background(), "model", 12)
	m.RecordExtraction(context.Background(), "two-pass", true)

	data := collect(t, reader)
	assert.NotContains(t, data, "atsmatch_keyword_categorizations_total")
	assert.NotContains(t, data, "atsmatch_resume_extractions_total")
}

func TestPipelineMetrics(t *testing.T) {
	m, reader := newTestMetrics(t, DefaultMetricSettings())
	ctx := context.Background()

	m.RecordKeywordSource(ctx, "fallback", 7)
	m.RecordKeywordSource(ctx, "model", 14)
	m.RecordExtraction(ctx, "placeholder", false)
	job := 64
	m.RecordScoring(ctx, 71, &job)

	data := collect(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, data["atsmatch_keyword_categorizations_total"]))
	assert.Equal(t, int64(1), counterTotal(t, data["atsmatch_resume_extractions_total"]))
	assert.Equal(t, int64(1), counterTotal(t, data["atsmatch_scoring_runs_total"]))

	hist, ok := data["atsmatch_ats_score"].(metricdata.Histogram[int64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count, "general and job-specific scores")
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	called := false
	err := m.TrackAIOperationWithTokens(context.Background(), "structure", func(ctx context.Context) *AIOperationResult {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	assert.NotPanics(t, func() {
		m.RecordKeywordSource(context.Background(), "short", 3)
		m.RecordExtraction(context.Background(), "single-pass", true)
		m.RecordScoring(context.Background(), 50, nil)
	})
}

func TestDisabledManager(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.ServiceName = "atsmatch"

	om, err := NewObservabilityManager(GetObservabilityConfig(cfg, "1.2.3"), cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, om.GetMetrics())
	assert.NotNil(t, om.Tracer("test"))
	assert.NoError(t, om.Shutdown(context.Background()))
}

func TestGetObservabilityConfigVersionFallback(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.ServiceName = "atsmatch"
	cfg.Observability.Enabled = true

	obs := GetObservabilityConfig(cfg, "0.9.0")
	assert.Equal(t, "0.9.0", obs.ServiceVersion)
	assert.True(t, obs.Enabled)

	cfg.Observability.ServiceVersion = "2.0.0"
	assert.Equal(t, "2.0.0", GetObservabilityConfig(cfg, "0.9.0").ServiceVersion)

	assert.Equal(t, "atsmatch", GetObservabilityConfig(nil, "x").ServiceName)
}
