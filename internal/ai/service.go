package ai

import (
	"context"
	"fmt"

	"atsmatch/internal/config"
	"atsmatch/internal/credentials"
	"atsmatch/internal/errors"
	"atsmatch/internal/observability"
)

// NewCompleter builds the completion service for the configured provider,
// instrumented with metrics when metrics is non-nil
func NewCompleter(cfg *config.Config, creds credentials.Provider, metrics *observability.Metrics, logger *errors.Logger) (Completer, error) {
	if logger == nil {
		logger = errors.NewNop()
	}

	logger.Debug("Initializing AI service",
		"provider", cfg.AI.Provider,
		"model", cfg.AI.Model,
		"timeout", cfg.AI.Timeout,
		"rate_limit_enabled", cfg.AI.RateLimit.Enabled,
		"use_system_prompts", cfg.AI.UseSystemPrompts)

	var completer Completer
	switch cfg.AI.Provider {
	case "gemini":
		provider, err := NewGeminiProvider(cfg, creds, logger)
		if err != nil {
			return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
				"Failed to create AI provider", err)
		}
		completer = provider
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.AI.Provider), nil)
	}

	if metrics == nil {
		return completer, nil
	}
	return Instrument(completer, metrics), nil
}

// BreakerReporter is implemented by completers that guard calls with
// circuit breakers
type BreakerReporter interface {
	GetCircuitBreakerStats() map[string]any
}

// BreakerStats returns the circuit breaker statistics of c, or false when c
// does not track any
func BreakerStats(c Completer) (map[string]any, bool) {
	r, ok := c.(BreakerReporter)
	if !ok {
		return nil, false
	}
	stats := r.GetCircuitBreakerStats()
	return stats, stats != nil
}

type instrumented struct {
	next    Completer
	metrics *observability.Metrics
}

// Instrument records duration, token and error metrics for every completion
func Instrument(next Completer, metrics *observability.Metrics) Completer {
	return &instrumented{next: next, metrics: metrics}
}

func (i *instrumented) Complete(ctx context.Context, req CompletionRequest) (string, *TokenUsage, error) {
	var (
		text  string
		usage *TokenUsage
	)
	err := i.metrics.TrackAIOperationWithTokens(ctx, req.Operation, func(ctx context.Context) *observability.AIOperationResult {
		var callErr error
		text, usage, callErr = i.next.Complete(ctx, req)
		result := &observability.AIOperationResult{Error: callErr}
		if usage != nil {
			result.TokenUsage = &observability.TokenUsage{
				InputTokens:  usage.InputTokens,
				OutputTokens: usage.OutputTokens,
				TotalTokens:  usage.TotalTokens,
			}
		}
		return result
	})
	return text, usage, err
}

// GetCircuitBreakerStats forwards to the wrapped completer
func (i *instrumented) GetCircuitBreakerStats() map[string]any {
	stats, _ := BreakerStats(i.next)
	return stats
}
