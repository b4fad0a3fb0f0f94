// Package extraction turns raw resume text into a structured
// ResumeDocument through a policy of model-backed strategies, degrading to
// a placeholder document instead of failing.
package extraction

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"atsmatch/internal/ai"
	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/observability"
	"atsmatch/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// PlaceholderValue fills every required field of the error placeholder
const PlaceholderValue = "Error processing resume"

// strategyPlaceholder labels the placeholder outcome in metrics and logs
const strategyPlaceholder = "placeholder"

const (
	truncationNote = "The resume exceeded the processing limit and was truncated; later sections may be missing."
	fallbackNote   = "Extracted with the %s fallback after the preferred extraction failed; please review the result."
	emptyInputNote = "No resume text was provided."
	failureNote    = "The resume could not be processed: %s"
)

// Extractor extracts structured resumes with a fallback policy
type Extractor struct {
	completer ai.Completer
	cfg       config.ExtractionConfig
	prompts   PromptSet
	metrics   *observability.Metrics
	logger    *errors.Logger
}

// NewExtractor creates an extractor with the built-in prompts
func NewExtractor(completer ai.Completer, cfg config.ExtractionConfig, logger *errors.Logger) *Extractor {
	if logger == nil {
		logger = errors.NewNop()
	}
	return &Extractor{
		completer: completer,
		cfg:       cfg,
		prompts:   DefaultPromptSet(),
		logger:    logger,
	}
}

// WithPrompts replaces the extraction prompts
func (e *Extractor) WithPrompts(p PromptSet) *Extractor {
	e.prompts = p
	return e
}

// WithMetrics records an extraction metric per call
func (e *Extractor) WithMetrics(m *observability.Metrics) *Extractor {
	e.metrics = m
	return e
}

// Extract returns the structured form of rawResume. It never fails: when
// every strategy fails the deterministic error placeholder is returned
// with a note describing the failure.
func (e *Extractor) Extract(ctx context.Context, rawResume string) types.ResumeDocument {
	tracer := otel.Tracer("atsmatch.extraction")
	ctx, span := tracer.Start(ctx, "extraction.extract")
	defer span.End()

	text := strings.TrimSpace(rawResume)
	if text == "" {
		e.logger.Warn("Empty resume text, returning placeholder")
		e.metrics.RecordExtraction(ctx, strategyPlaceholder, false)
		return ErrorPlaceholder(emptyInputNote)
	}

	var notes []string
	if n := utf8.RuneCountInString(text); e.cfg.MaxInputChars > 0 && n > e.cfg.MaxInputChars {
		e.logger.Warn("Resume text truncated",
			"length", n,
			"max_length", e.cfg.MaxInputChars)
		text = truncateRunes(text, e.cfg.MaxInputChars)
		notes = append(notes, truncationNote)
	}

	policy, err := e.policy()
	if err != nil {
		e.logger.LogError(err, "Invalid extraction strategies")
		span.RecordError(err)
		e.metrics.RecordExtraction(ctx, strategyPlaceholder, false)
		return ErrorPlaceholder(fmt.Sprintf(failureNote, err.Error()))
	}

	outcome := policy.Run(ctx, e.completer, text)
	for _, f := range outcome.Failures {
		e.logger.LogError(f.Err, "Resume extraction attempt failed",
			"strategy", f.Strategy,
			"attempt", f.Attempt,
			"failure", f.Kind)
	}

	if !outcome.OK() {
		span.SetAttributes(attribute.String("extraction.strategy", strategyPlaceholder))
		e.metrics.RecordExtraction(ctx, strategyPlaceholder, false)
		return ErrorPlaceholder(fmt.Sprintf(failureNote, describeFailure(outcome.Failures)))
	}

	doc := outcome.Document
	if outcome.Index > 0 {
		notes = append(notes, fmt.Sprintf(fallbackNote, outcome.Strategy))
	}
	if len(notes) > 0 {
		doc.Note = strings.Join(notes, " ")
	}

	span.SetAttributes(
		attribute.String("extraction.strategy", outcome.Strategy),
		attribute.Int("extraction.failed_attempts", len(outcome.Failures)),
	)
	e.metrics.RecordExtraction(ctx, outcome.Strategy, true)
	e.logger.Info("Resume extracted",
		"strategy", outcome.Strategy,
		"failed_attempts", len(outcome.Failures),
		"work_experience", len(doc.WorkExperience))
	return doc
}

func (e *Extractor) policy() (Policy, error) {
	names := e.cfg.Strategies
	if len(names) == 0 {
		names = config.KnownStrategies
	}
	strategies, err := NewStrategies(names, e.prompts)
	if err != nil {
		return Policy{}, err
	}
	return Policy{Strategies: strategies, Attempts: e.cfg.Attempts}, nil
}

// describeFailure turns the last failure into a user-presentable reason
func describeFailure(failures []Failure) string {
	if len(failures) == 0 {
		return "no extraction strategy was attempted"
	}
	var appErr *errors.AppError
	if stderrors.As(failures[len(failures)-1].Err, &appErr) {
		return appErr.UserMessage()
	}
	return "the language model request failed"
}

// ErrorPlaceholder returns the fully formed document used when extraction
// fails. It depends only on note.
func ErrorPlaceholder(note string) types.ResumeDocument {
	doc := types.ResumeDocument{
		PersonalInfo: types.PersonalInfo{
			FullName: PlaceholderValue,
			Email:    PlaceholderValue,
			Phone:    PlaceholderValue,
			Location: PlaceholderValue,
		},
		Summary: PlaceholderValue,
		WorkExperience: []types.WorkExperience{{
			Company:     PlaceholderValue,
			Position:    PlaceholderValue,
			Description: PlaceholderValue,
		}},
		Note: note,
	}
	doc.EnsureCollections()
	return doc
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
