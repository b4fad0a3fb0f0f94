package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// MetricSettings toggles groups of custom metrics
type MetricSettings struct {
	AIOperations    bool
	TrackDuration   bool
	TrackTokenUsage bool
	Business        bool
}

// DefaultMetricSettings enables every metric group
func DefaultMetricSettings() MetricSettings {
	return MetricSettings{AIOperations: true, TrackDuration: true, TrackTokenUsage: true, Business: true}
}

// Metrics holds all custom metrics for atsmatch. Every method is safe to
// call on a nil *Metrics.
type Metrics struct {
	settings MetricSettings

	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Pipeline outcome metrics
	KeywordCategorizations metric.Int64Counter
	ResumeExtractions      metric.Int64Counter
	ScoringRuns            metric.Int64Counter
	ATSScores              metric.Int64Histogram
}

// NewMetrics creates the custom instruments on meter
func NewMetrics(meter metric.Meter, settings MetricSettings) (*Metrics, error) {
	m := &Metrics{settings: settings}
	if err := m.createAIMetrics(meter); err != nil {
		return nil, err
	}
	if err := m.createPipelineMetrics(meter); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) createAIMetrics(meter metric.Meter) error {
	var err error

	m.AIProcessingTime, err = meter.Float64Histogram(
		"atsmatch_ai_processing_duration_seconds",
		metric.WithDescription("Time spent waiting on model completions"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	m.AIRequestCount, err = meter.Int64Counter(
		"atsmatch_ai_requests_total",
		metric.WithDescription("Total number of model completions"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	m.AIErrorCount, err = meter.Int64Counter(
		"atsmatch_ai_errors_total",
		metric.WithDescription("Total number of failed model completions"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	m.AITokenUsage, err = meter.Int64Histogram(
		"atsmatch_ai_token_usage_total",
		metric.WithDescription("Token usage for model completions (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI token usage metric: %w", err)
	}
	return nil
}

func (m *Metrics) createPipelineMetrics(meter metric.Meter) error {
	var err error

	m.KeywordCategorizations, err = meter.Int64Counter(
		"atsmatch_keyword_categorizations_total",
		metric.WithDescription("Job descriptions categorized, by keyword source"),
	)
	if err != nil {
		return fmt.Errorf("failed to create keyword categorization metric: %w", err)
	}

	m.ResumeExtractions, err = meter.Int64Counter(
		"atsmatch_resume_extractions_total",
		metric.WithDescription("Resume extractions, by the strategy that produced the document"),
	)
	if err != nil {
		return fmt.Errorf("failed to create resume extraction metric: %w", err)
	}

	m.ScoringRuns, err = meter.Int64Counter(
		"atsmatch_scoring_runs_total",
		metric.WithDescription("Resumes scored"),
	)
	if err != nil {
		return fmt.Errorf("failed to create scoring runs metric: %w", err)
	}

	m.ATSScores, err = meter.Int64Histogram(
		"atsmatch_ats_score",
		metric.WithDescription("Distribution of ATS scores"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ATS score metric: %w", err)
	}
	return nil
}

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// TrackAIOperationWithTokens instruments an AI operation with tracing, metrics, and token usage
func (m *Metrics) TrackAIOperationWithTokens(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult) error {
	if m == nil || !m.settings.AIOperations {
		if result := fn(ctx); result != nil {
			return result.Error
		}
		return nil
	}

	tracer := otel.Tracer("atsmatch.ai")
	ctx, span := tracer.Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	if m.settings.TrackDuration {
		m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}
	if result != nil && result.TokenUsage != nil {
		m.recordTokenUsage(ctx, result.TokenUsage, attrs, span)
	}

	span.SetAttributes(attrs...)
	return err
}

func (m *Metrics) recordTokenUsage(ctx context.Context, usage *TokenUsage, attrs []attribute.KeyValue, span oteltrace.Span) {
	// traces always carry token counts
	span.SetAttributes(
		attribute.Int64("ai.tokens.input", usage.InputTokens),
		attribute.Int64("ai.tokens.output", usage.OutputTokens),
		attribute.Int64("ai.tokens.total", usage.TotalTokens),
	)
	if !m.settings.TrackTokenUsage {
		return
	}

	for _, tt := range []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		tokenAttrs := append(append([]attribute.KeyValue{}, attrs...), attribute.String("token_type", tt.tokenType))
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}
}

// RecordKeywordSource counts one categorization by where its keywords came from
func (m *Metrics) RecordKeywordSource(ctx context.Context, source string, total int) {
	if m == nil || !m.settings.Business {
		return
	}
	m.KeywordCategorizations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("empty", total == 0),
	))
}

// RecordExtraction counts one resume extraction by the strategy that
// produced it; "placeholder" marks total failure
func (m *Metrics) RecordExtraction(ctx context.Context, strategy string, success bool) {
	if m == nil || !m.settings.Business {
		return
	}
	m.ResumeExtractions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.Bool("success", success),
	))
}

// RecordScoring counts a scoring run and records its scores
func (m *Metrics) RecordScoring(ctx context.Context, generalScore int, jobScore *int) {
	if m == nil || !m.settings.Business {
		return
	}
	m.ScoringRuns.Add(ctx, 1, metric.WithAttributes(attribute.Bool("job_specific", jobScore != nil)))
	m.ATSScores.Record(ctx, int64(generalScore), metric.WithAttributes(attribute.String("kind", "general")))
	if jobScore != nil {
		m.ATSScores.Record(ctx, int64(*jobScore), metric.WithAttributes(attribute.String("kind", "job_specific")))
	}
}
