// Package analysis orchestrates keyword categorization, extraction and
// scoring into a complete ATS score report.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"atsmatch/internal/alignment"
	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/extraction"
	"atsmatch/internal/keywords"
	"atsmatch/internal/observability"
	"atsmatch/internal/rules"
	"atsmatch/internal/scoring"
	"atsmatch/internal/types"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Request is a scoring request for an already structured resume
type Request struct {
	Resume          types.ResumeDocument `json:"resume"`
	JobTitle        string               `json:"jobTitle" validate:"max=200"`
	JobDescription  string               `json:"jobDescription" validate:"max=5000"`
	CurrentPosition string               `json:"currentPosition" validate:"max=200"`
}

// Validate checks the request bounds
func (r *Request) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !asValidationErrors(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Invalid scoring request", err)
	}
	fe := fieldErrs[0]
	code := errors.ErrCodeInvalidRequest
	if fe.Tag() == "max" {
		code = errors.ErrCodeInputTooLong
	}
	return errors.NewValidationError(code,
		fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()), err).
		WithContext("field", fe.Field())
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = fieldErrs
	}
	return ok
}

// Service produces ATS score reports
type Service struct {
	categorizer *keywords.Categorizer
	extractor   *extraction.Extractor
	general     *scoring.GeneralRubric
	job         *scoring.JobRubric
	synthesizer *scoring.Synthesizer
	classifier  *alignment.Classifier
	metrics     *observability.Metrics
	logger      *errors.Logger
}

// NewService wires the rubrics over r. The categorizer is required for
// job-specific scoring; the extractor only for ScoreText.
func NewService(categorizer *keywords.Categorizer, extractor *extraction.Extractor, r *rules.Rules, cfg config.ScoringConfig, logger *errors.Logger) *Service {
	if logger == nil {
		logger = errors.NewNop()
	}
	return &Service{
		categorizer: categorizer,
		extractor:   extractor,
		general:     scoring.NewGeneralRubric(r, cfg),
		job:         scoring.NewJobRubric(r),
		synthesizer: scoring.NewSynthesizer(cfg),
		classifier:  alignment.NewClassifier(r),
		logger:      logger,
	}
}

// WithMetrics records a scoring metric per report
func (s *Service) WithMetrics(m *observability.Metrics) *Service {
	s.metrics = m
	return s
}

// ScoreText extracts rawResume and scores the result
func (s *Service) ScoreText(ctx context.Context, rawResume string, req Request) (*types.ATSScoreReport, error) {
	if s.extractor == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Resume extraction is not configured", nil)
	}
	req.Resume = s.extractor.Extract(ctx, rawResume)
	return s.Score(ctx, req)
}

// Score builds the report for req. The job-specific score and keyword
// feedback are present only when a job description is supplied; career
// alignment only when both a current position and a job title are known.
func (s *Service) Score(ctx context.Context, req Request) (*types.ATSScoreReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)

	tracer := otel.Tracer("atsmatch.analysis")
	ctx, span := tracer.Start(ctx, "analysis.score")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", requestID))

	doc := req.Resume
	doc.EnsureCollections()

	var (
		general    scoring.GeneralResult
		jobKeys    types.JobKeywordSet
		hasJobKeys bool
	)

	withJob := strings.TrimSpace(req.JobDescription) != ""
	if withJob && s.categorizer == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Keyword categorization is not configured", nil)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		general = s.general.Score(doc, req.JobTitle)
		return nil
	})
	if withJob {
		g.Go(func() error {
			set, err := s.categorizer.Categorize(gCtx, req.JobTitle, req.JobDescription)
			if err != nil {
				return err
			}
			jobKeys = set
			hasJobKeys = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		logger.LogError(err, "Scoring failed")
		return nil, err
	}

	report := &types.ATSScoreReport{
		RequestID:    requestID,
		GeneralScore: general.Total,
		Feedback:     general.Feedback,
	}

	var missing []string
	if hasJobKeys {
		result := s.job.Score(doc, jobKeys)
		score := result.Score
		report.JobSpecificScore = &score
		report.KeywordsFeedback = &result.Keywords
		missing = result.Keywords.Missing
	}

	titleMismatch := false
	if current := currentPosition(req, doc); current != "" && strings.TrimSpace(req.JobTitle) != "" {
		a := s.classifier.Classify(current, req.JobTitle)
		report.CareerAlignment = &a
		titleMismatch = alignment.IsCareerChange(a)
	}

	report.OverallSuggestions = s.synthesizer.Synthesize(report.Feedback, report.JobSpecificScore, titleMismatch, missing)

	s.metrics.RecordScoring(ctx, report.GeneralScore, report.JobSpecificScore)
	logger.Info("Resume scored",
		"general_score", report.GeneralScore,
		"job_specific", report.JobSpecificScore != nil,
		"title_mismatch", titleMismatch)

	return report, nil
}

// currentPosition prefers the explicit position and falls back to the
// most recent work experience entry
func currentPosition(req Request, doc types.ResumeDocument) string {
	if p := strings.TrimSpace(req.CurrentPosition); p != "" {
		return p
	}
	for _, exp := range doc.WorkExperience {
		if exp.Current && strings.TrimSpace(exp.Position) != "" {
			return strings.TrimSpace(exp.Position)
		}
	}
	if len(doc.WorkExperience) > 0 {
		return strings.TrimSpace(doc.WorkExperience[0].Position)
	}
	return ""
}
