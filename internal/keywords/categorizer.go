package keywords

import (
	"context"
	"strings"
	"unicode/utf8"

	"atsmatch/internal/ai"
	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/observability"
	"atsmatch/internal/rules"
	"atsmatch/internal/schemas"
	"atsmatch/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Source records where the keywords of a categorization came from
type Source string

const (
	SourceModel             Source = "model"
	SourceModelWithFallback Source = "model+fallback"
	SourceFallback          Source = "fallback"
	SourceShort             Source = "short"
)

// Outcome is a categorization together with how it was produced
type Outcome struct {
	Keywords types.JobKeywordSet
	Source   Source
	Failure  ai.FailureKind // why the model result was discarded, if it was
	Usage    *ai.TokenUsage
}

// Categorizer extracts and categorizes job keywords with the language
// model, falling back to pattern categorization when the model fails or
// returns too little
type Categorizer struct {
	completer ai.Completer
	extractor *Extractor
	patterns  *PatternCategorizer
	cleaner   *Cleaner
	cfg       config.KeywordsConfig
	prompts   ai.Prompts
	metrics   *observability.Metrics
	logger    *errors.Logger
}

// NewCategorizer creates a categorizer using the built-in prompts
func NewCategorizer(completer ai.Completer, r *rules.Rules, cfg config.KeywordsConfig, logger *errors.Logger) *Categorizer {
	if logger == nil {
		logger = errors.NewNop()
	}
	return &Categorizer{
		completer: completer,
		extractor: NewExtractor(r),
		patterns:  NewPatternCategorizer(r),
		cleaner:   NewCleaner(r, cfg.MinKeywordLength, cfg.MaxKeywordLength, cfg.MaxItemsPerCategory),
		cfg:       cfg,
		prompts:   ai.DefaultPrompts(ai.PromptCategorize),
		logger:    logger,
	}
}

// WithPrompts replaces the categorization prompts
func (c *Categorizer) WithPrompts(p ai.Prompts) *Categorizer {
	c.prompts = p
	return c
}

// WithMetrics records a keyword-source metric per categorization
func (c *Categorizer) WithMetrics(m *observability.Metrics) *Categorizer {
	c.metrics = m
	return c
}

// Categorize returns the keyword set of a job description. Only an empty
// description is an error; model and parse failures degrade to the
// pattern fallback.
func (c *Categorizer) Categorize(ctx context.Context, jobTitle, jobDescription string) (types.JobKeywordSet, error) {
	outcome, err := c.CategorizeWithSource(ctx, jobTitle, jobDescription)
	return outcome.Keywords, err
}

// CategorizeWithSource is Categorize reporting where the keywords came from
func (c *Categorizer) CategorizeWithSource(ctx context.Context, jobTitle, jobDescription string) (Outcome, error) {
	tracer := otel.Tracer("atsmatch.keywords")
	ctx, span := tracer.Start(ctx, "keywords.categorize")
	defer span.End()

	description := strings.TrimSpace(jobDescription)
	if description == "" {
		err := errors.NewValidationError(errors.ErrCodeEmptyInput, "Job description is required", nil)
		span.RecordError(err)
		return Outcome{Keywords: types.NewJobKeywordSet()}, err
	}

	if n := utf8.RuneCountInString(description); n > c.cfg.MaxDescriptionLength {
		c.logger.Warn("Job description truncated",
			"length", n,
			"max_length", c.cfg.MaxDescriptionLength)
		description = truncateRunes(description, c.cfg.MaxDescriptionLength)
	}

	var outcome Outcome
	if utf8.RuneCountInString(description) < c.cfg.MinDescriptionLength {
		outcome = c.shortDescription(description)
	} else {
		outcome = c.fromModel(ctx, jobTitle, description)
	}

	total := outcome.Keywords.Total()
	span.SetAttributes(
		attribute.String("keywords.source", string(outcome.Source)),
		attribute.Int("keywords.total", total),
		attribute.Int("input.job_length", len(description)),
	)
	c.metrics.RecordKeywordSource(ctx, string(outcome.Source), total)
	c.logger.Info("Job keywords categorized",
		"source", outcome.Source,
		"total", total,
		"failure", outcome.Failure)

	return outcome, nil
}

// shortDescription handles descriptions too short for rich
// categorization: basic extraction, everything in technicalSkills
func (c *Categorizer) shortDescription(description string) Outcome {
	keywords := c.cleaner.Clean(c.extractor.Extract(description, c.cfg.BasicExtractionLimit))
	if len(keywords) > c.cfg.ShortDescriptionLimit {
		keywords = keywords[:c.cfg.ShortDescriptionLimit]
	}
	set := types.NewJobKeywordSet()
	set.Set(types.CategoryTechnicalSkills, keywords)
	return Outcome{Keywords: set, Source: SourceShort}
}

func (c *Categorizer) fromModel(ctx context.Context, jobTitle, description string) Outcome {
	req := ai.CompletionRequest{
		Operation:    config.OperationCategorize,
		Prompt:       c.prompts.Format(jobTitle, description),
		SystemPrompt: c.prompts.System,
		Structured:   true,
		Schema:       ai.SchemaKeywords,
	}

	result := ai.Call(ctx, c.completer, req, c.parse)
	if !result.OK() {
		c.logger.LogError(result.Err, "Keyword categorization failed, using pattern fallback",
			"failure", result.Kind)
		return Outcome{
			Keywords: c.Fallback(description),
			Source:   SourceFallback,
			Failure:  result.Kind,
			Usage:    result.Usage,
		}
	}

	set := result.Value
	if set.Total() >= c.cfg.QualityGateMinItems {
		return Outcome{Keywords: set, Source: SourceModel, Usage: result.Usage}
	}

	c.logger.Debug("Model keywords below quality gate, back-filling empty categories",
		"total", set.Total(),
		"min_items", c.cfg.QualityGateMinItems)
	fallback := c.Fallback(description)
	for _, category := range types.Categories {
		if len(set.Get(category)) == 0 {
			set.Set(category, fallback.Get(category))
		}
	}
	return Outcome{Keywords: set, Source: SourceModelWithFallback, Usage: result.Usage}
}

// parse decodes the model payload once into a cleaned keyword set
func (c *Categorizer) parse(text string) (types.JobKeywordSet, error) {
	obj, err := ai.DecodeObject(text)
	if err != nil {
		return types.JobKeywordSet{}, err
	}
	if err := schemas.Validate(schemas.Keywords, obj, true); err != nil {
		return types.JobKeywordSet{}, err
	}
	return c.cleaner.FromObject(obj), nil
}

// Fallback categorizes a description without the model: basic extraction
// followed by pattern categorization, cleaned like model output
func (c *Categorizer) Fallback(description string) types.JobKeywordSet {
	extracted := c.extractor.Extract(description, c.cfg.BasicExtractionLimit)
	return c.cleaner.CleanSet(c.patterns.Categorize(extracted))
}

// truncateRunes cuts s to at most n runes
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
