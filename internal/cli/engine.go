package cli

import (
	"context"
	"fmt"
	"time"

	"atsmatch/internal/ai"
	"atsmatch/internal/alignment"
	"atsmatch/internal/analysis"
	"atsmatch/internal/config"
	"atsmatch/internal/credentials"
	"atsmatch/internal/errors"
	"atsmatch/internal/extraction"
	"atsmatch/internal/keywords"
	"atsmatch/internal/observability"
	"atsmatch/internal/rules"
)

// engine holds the components a command needs, built once per invocation
type engine struct {
	cfg         *config.Config
	logger      *errors.Logger
	rules       *rules.Rules
	creds       credentials.Source
	completer   ai.Completer
	obs         *observability.ObservabilityManager
	categorizer *keywords.Categorizer
	extractor   *extraction.Extractor
	service     *analysis.Service
	classifier  *alignment.Classifier
}

// newEngine wires rules, credentials, observability, the completion
// service and the scoring pipeline from cfg. Call close when done.
func newEngine(cfg *config.Config, logger *errors.Logger) (*engine, error) {
	r, err := rules.Load(cfg.Rules.OverrideFile)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to load rule tables", err).
			WithContext("override_file", cfg.Rules.OverrideFile)
	}

	obs, err := observability.NewObservabilityManager(
		observability.GetObservabilityConfig(cfg, Version), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	metrics := obs.GetMetrics()

	creds, err := credentials.New(cfg, logger)
	if err != nil {
		shutdown(obs, logger)
		return nil, err
	}
	logger.Debug("Credentials source ready", "source", cfg.Credentials.Source, "refresh", creds.Policy())

	completer, err := ai.NewCompleter(cfg, creds, metrics, logger)
	if err != nil {
		_ = creds.Close()
		shutdown(obs, logger)
		return nil, err
	}

	categorizer := keywords.NewCategorizer(completer, r, cfg.Keywords, logger).
		WithPrompts(ai.ResolvePrompts(ai.PromptCategorize, cfg.GetCategorizeConfig())).
		WithMetrics(metrics)

	extractor := extraction.NewExtractor(completer, cfg.Extraction, logger).
		WithPrompts(extraction.ResolvePromptSet(cfg)).
		WithMetrics(metrics)

	service := analysis.NewService(categorizer, extractor, r, cfg.Scoring, logger).
		WithMetrics(metrics)

	return &engine{
		cfg:         cfg,
		logger:      logger,
		rules:       r,
		creds:       creds,
		completer:   completer,
		obs:         obs,
		categorizer: categorizer,
		extractor:   extractor,
		service:     service,
		classifier:  alignment.NewClassifier(r),
	}, nil
}

func (e *engine) close() {
	if stats, ok := ai.BreakerStats(e.completer); ok {
		e.logger.Debug("Circuit breaker state", "stats", stats)
	}
	if err := e.creds.Close(); err != nil {
		e.logger.Warn("Failed to stop credentials refresh", "error", err)
	}
	shutdown(e.obs, e.logger)
}

func shutdown(obs *observability.ObservabilityManager, logger *errors.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := obs.Shutdown(ctx); err != nil {
		logger.Warn("Failed to shut down observability", "error", err)
	}
}
