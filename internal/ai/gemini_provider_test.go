package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"atsmatch/internal/config"
	"atsmatch/internal/credentials"
	"atsmatch/internal/errors"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

func float32Ptr(f float32) *float32 { return &f }

func testConfig() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			Provider:         "gemini",
			Model:            "gemini-test",
			Timeout:          5 * time.Second,
			Temperature:      0.2,
			MaxOutputTokens:  1024,
			UseSystemPrompts: true,
			Categorize: config.OperationAIConfig{
				Model:       "categorize-model",
				Temperature: float32Ptr(0.1),
			},
		},
	}
}

func newTestProvider(t *testing.T, cfg *config.Config, key string) *GeminiProvider {
	t.Helper()
	g, err := NewGeminiProvider(cfg, credentials.NewStatic(key), nil)
	require.NoError(t, err)
	return g
}

func TestNewGeminiProviderOperations(t *testing.T) {
	cfg := testConfig()
	cfg.AI.Structure.CircuitBreaker = config.CircuitBreakerConfig{
		Enabled: true, MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute,
		MinRequests: 3, FailureThreshold: 0.5,
	}
	g := newTestProvider(t, cfg, "key")

	require.Len(t, g.operations, len(config.Operations))
	assert.Equal(t, "categorize-model", g.operations[config.OperationCategorize].config.Model)
	assert.Equal(t, "gemini-test", g.operations[config.OperationExtractText].config.Model)
	assert.Nil(t, g.operations[config.OperationCategorize].breaker)
	assert.NotNil(t, g.operations[config.OperationStructure].breaker)
	assert.Nil(t, g.limiter, "rate limiting disabled")

	stats := g.GetCircuitBreakerStats()
	assert.Equal(t, true, stats["overall_healthy"])

	_, err := NewGeminiProvider(cfg, nil, nil)
	assert.Error(t, err)
}

func TestNewGeminiProviderRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.AI.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMin: 120, BurstCapacity: 4}
	g := newTestProvider(t, cfg, "key")

	require.NotNil(t, g.limiter)
	assert.InDelta(t, 2.0, float64(g.limiter.Limit()), 1e-9)
	assert.Equal(t, 4, g.limiter.Burst())
}

func TestBuildRequest(t *testing.T) {
	g := newTestProvider(t, testConfig(), "key")
	op := g.operations[config.OperationCategorize]

	genCfg, prompt := g.buildRequest(op, CompletionRequest{
		Operation:    config.OperationCategorize,
		Prompt:       "user prompt",
		SystemPrompt: "system prompt",
		Structured:   true,
		Schema:       SchemaKeywords,
	})
	assert.Equal(t, "user prompt", prompt)
	require.NotNil(t, genCfg.Temperature)
	assert.Equal(t, float32(0.1), *genCfg.Temperature)
	assert.Equal(t, int32(1024), genCfg.MaxOutputTokens)
	assert.Equal(t, "application/json", genCfg.ResponseMIMEType)
	require.NotNil(t, genCfg.ResponseSchema)
	assert.Len(t, genCfg.ResponseSchema.Properties, 9)
	require.NotNil(t, genCfg.SystemInstruction)

	// per-request overrides and inline system prompt
	noSystem := false
	op.config.UseSystemPrompts = &noSystem
	genCfg, prompt = g.buildRequest(op, CompletionRequest{
		Prompt:          "user prompt",
		SystemPrompt:    "system prompt",
		Temperature:     float32Ptr(0.7),
		MaxOutputTokens: 64,
	})
	assert.Equal(t, "system prompt\n\nuser prompt", prompt)
	assert.Nil(t, genCfg.SystemInstruction)
	assert.Equal(t, float32(0.7), *genCfg.Temperature)
	assert.Equal(t, int32(64), genCfg.MaxOutputTokens)
	assert.Empty(t, genCfg.ResponseMIMEType)
}

func TestCompleteWithoutKey(t *testing.T) {
	g := newTestProvider(t, testConfig(), "")

	_, _, err := g.Complete(context.Background(), CompletionRequest{
		Operation: config.OperationCategorize,
		Prompt:    "anything",
	})
	require.Error(t, err)
	assert.Equal(t, FailureAuth, KindOf(err))
}

func TestCompleteUnknownOperation(t *testing.T) {
	g := newTestProvider(t, testConfig(), "key")

	_, _, err := g.Complete(context.Background(), CompletionRequest{Operation: "summarize"})
	require.Error(t, err)
	assert.Equal(t, FailureServer, KindOf(err))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		kind FailureKind
	}{
		{"unauthorized", genai.APIError{Code: http.StatusUnauthorized, Message: "unauthenticated"}, errors.ErrCodeAIAuth, FailureAuth},
		{"forbidden wrapped", fmt.Errorf("call: %w", genai.APIError{Code: http.StatusForbidden}), errors.ErrCodeAIAuth, FailureAuth},
		{"bad api key", genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, errors.ErrCodeAIAuth, FailureAuth},
		{"bad request", genai.APIError{Code: http.StatusBadRequest, Message: "invalid schema"}, errors.ErrCodeAIServer, FailureServer},
		{"quota", genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}, errors.ErrCodeAIRateLimit, FailureRateLimit},
		{"server", genai.APIError{Code: http.StatusServiceUnavailable}, errors.ErrCodeAIServer, FailureServer},
		{"googleapi rate limit", &googleapi.Error{Code: http.StatusTooManyRequests}, errors.ErrCodeAIRateLimit, FailureRateLimit},
		{"timeout", fmt.Errorf("post: %w", context.DeadlineExceeded), errors.ErrCodeAITimeout, FailureServer},
		{"breaker open", gobreaker.ErrOpenState, errors.ErrCodeAIServer, FailureServer},
		{"network", stderrors.New("connection reset by peer"), errors.ErrCodeAIServer, FailureServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := classifyError(tt.err)
			assert.Equal(t, errors.ErrorTypeAI, appErr.Type)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.kind, KindOf(appErr))
			assert.Equal(t, tt.err, appErr.Cause)
		})
	}
}

func TestExtractTokenUsage(t *testing.T) {
	assert.Nil(t, extractTokenUsage(nil))
	assert.Nil(t, extractTokenUsage(&genai.GenerateContentResponse{}))

	usage := extractTokenUsage(&genai.GenerateContentResponse{
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 30,
			TotalTokenCount:      150,
		},
	})
	require.NotNil(t, usage)
	assert.Equal(t, TokenUsage{InputTokens: 120, OutputTokens: 30, TotalTokens: 150}, *usage)
}

func TestResponseSchema(t *testing.T) {
	assert.Nil(t, responseSchema(SchemaNone))

	resume := responseSchema(SchemaResume)
	require.NotNil(t, resume)
	assert.Equal(t, genai.TypeObject, resume.Type)
	assert.Contains(t, resume.Required, "workExperience")
	assert.Equal(t, genai.TypeArray, resume.Properties["workExperience"].Type)
	assert.Equal(t, genai.TypeBoolean, resume.Properties["workExperience"].Items.Properties["current"].Type)
}
