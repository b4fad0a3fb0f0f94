package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"atsmatch/internal/config"
	"atsmatch/internal/credentials"
	"atsmatch/internal/errors"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements Completer for Google Gemini
type GeminiProvider struct {
	operations map[string]*operation
	creds      credentials.Provider
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     *errors.Logger

	mu       sync.Mutex
	clients  map[string]*genai.Client
	credsKey string
}

type operation struct {
	config  config.OperationAIConfig
	breaker *AICircuitBreaker
	apiKey  string // set only when the operation has its own key
}

// Ensure GeminiProvider implements Completer
var _ Completer = (*GeminiProvider)(nil)

// NewGeminiProvider creates a provider serving every configured operation.
// The genai client is built on first use from the current API key and
// rebuilt whenever the key rotates.
func NewGeminiProvider(cfg *config.Config, creds credentials.Provider, logger *errors.Logger) (*GeminiProvider, error) {
	if creds == nil {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"No credentials provider configured for Gemini", nil)
	}
	if logger == nil {
		logger = errors.NewNop()
	}

	g := &GeminiProvider{
		operations: make(map[string]*operation, len(config.Operations)),
		creds:      creds,
		clients:    make(map[string]*genai.Client),
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:     logger,
	}

	for _, name := range config.Operations {
		opCfg := cfg.GetOperationConfig(name)
		g.operations[name] = &operation{
			config:  opCfg,
			breaker: NewAICircuitBreaker(name, opCfg.CircuitBreaker, logger),
			apiKey:  cfg.OperationAPIKey(name),
		}
	}

	if rl := cfg.AI.RateLimit; rl.Enabled {
		g.limiter = rate.NewLimiter(rate.Limit(float64(rl.RequestsPerMin)/60.0), rl.BurstCapacity)
	}

	return g, nil
}

// Complete sends one prompt to the model configured for req.Operation
func (g *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (string, *TokenUsage, error) {
	op, ok := g.operations[req.Operation]
	if !ok {
		return "", nil, errors.NewInternalError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Unknown AI operation: %s", req.Operation), nil)
	}

	tracer := otel.Tracer("atsmatch.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+req.Operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", op.config.Model),
		attribute.String("ai.schema", string(req.Schema)),
		attribute.Int("input.prompt_length", len(req.Prompt)),
	)

	text, usage, err := g.complete(ctx, op, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("success", false))
		return "", usage, err
	}

	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))
	return text, usage, nil
}

func (g *GeminiProvider) complete(ctx context.Context, op *operation, req CompletionRequest) (string, *TokenUsage, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", nil, errors.NewAIError(errors.ErrCodeAIRateLimit,
				"Outbound model request budget exhausted", err)
		}
	}

	client, err := g.getClient(ctx, op)
	if err != nil {
		return "", nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, *op.config.Timeout)
	defer cancel()

	genCfg, prompt := g.buildRequest(op, req)

	g.logger.Debug("Sending model request",
		"operation", req.Operation,
		"model", op.config.Model,
		"structured", req.Structured,
		"max_output_tokens", genCfg.MaxOutputTokens)

	resp, err := op.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return client.Models.GenerateContent(callCtx, op.config.Model, genai.Text(prompt), genCfg)
	})
	if err != nil {
		appErr := classifyError(err).WithContext("operation", req.Operation)
		g.logger.LogError(appErr, "Model request failed", "model", op.config.Model)
		return "", nil, appErr
	}

	usage := extractTokenUsage(resp)
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", usage, errors.NewAIError(errors.ErrCodeAIEmptyResponse,
			"Model returned an empty response for "+req.Operation, nil)
	}
	return text, usage, nil
}

// buildRequest merges the per-request overrides with the operation
// defaults. Without system prompt support the system prompt is prepended
// to the user prompt.
func (g *GeminiProvider) buildRequest(op *operation, req CompletionRequest) (*genai.GenerateContentConfig, string) {
	genCfg := &genai.GenerateContentConfig{}

	temperature := op.config.Temperature
	if req.Temperature != nil {
		temperature = req.Temperature
	}
	if temperature != nil {
		t := *temperature
		genCfg.Temperature = &t
	}

	genCfg.MaxOutputTokens = *op.config.MaxOutputTokens
	if req.MaxOutputTokens > 0 {
		genCfg.MaxOutputTokens = req.MaxOutputTokens
	}

	if req.Structured {
		genCfg.ResponseMIMEType = "application/json"
		genCfg.ResponseSchema = responseSchema(req.Schema)
	}

	prompt := req.Prompt
	if req.SystemPrompt != "" {
		if *op.config.UseSystemPrompts {
			genCfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
		} else {
			prompt = req.SystemPrompt + "\n\n" + req.Prompt
		}
	}
	return genCfg, prompt
}

// getClient returns a client for the operation's current API key
func (g *GeminiProvider) getClient(ctx context.Context, op *operation) (*genai.Client, error) {
	key := op.apiKey
	if key == "" {
		k, err := g.creds.APIKey(ctx)
		if err != nil {
			return nil, errors.NewAIError(errors.ErrCodeMissingAPIKey,
				"Failed to obtain Gemini API key", err)
		}
		key = k
		g.noteCredentialsKey(key)
	}
	if key == "" {
		return nil, errors.NewAIError(errors.ErrCodeMissingAPIKey,
			"Gemini API key is not configured", nil)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if client, ok := g.clients[key]; ok {
		return client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}
	g.clients[key] = client
	return client, nil
}

// noteCredentialsKey drops the client built for a rotated-out key
func (g *GeminiProvider) noteCredentialsKey(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.credsKey == key {
		return
	}
	if g.credsKey != "" {
		delete(g.clients, g.credsKey)
		g.logger.Info("Gemini API key rotated, rebuilding client")
	}
	g.credsKey = key
}

// GetCircuitBreakerStats returns circuit breaker statistics per operation
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := make(map[string]any, len(g.operations)+1)
	healthy := true
	for name, op := range g.operations {
		stats[name] = op.breaker.GetStats()
		healthy = healthy && op.breaker.IsHealthy()
	}
	stats["overall_healthy"] = healthy
	return stats
}

// classifyError maps a vendor error to one of the completion failure codes
func classifyError(err error) *errors.AppError {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewAIError(errors.ErrCodeAITimeout, "Model request timed out", err)
	case stderrors.Is(err, context.Canceled):
		return errors.NewAIError(errors.ErrCodeAIServer, "Model request was cancelled", err)
	case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
		return errors.NewAIError(errors.ErrCodeAIServer, "Model circuit breaker is open", err)
	}

	var (
		status  int
		reason  string
		message string
	)
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	var gErr *googleapi.Error
	switch {
	case stderrors.As(err, &apiErr):
		status, reason, message = apiErr.Code, apiErr.Status, apiErr.Message
	case stderrors.As(err, &apiErrPtr):
		status, reason, message = apiErrPtr.Code, apiErrPtr.Status, apiErrPtr.Message
	case stderrors.As(err, &gErr):
		status, message = gErr.Code, gErr.Message
	default:
		return errors.NewAIError(errors.ErrCodeAIServer, "Model request failed", err)
	}

	var appErr *errors.AppError
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		appErr = errors.NewAIError(errors.ErrCodeAIAuth, "Model provider rejected the credentials", err)
	case status == http.StatusTooManyRequests:
		appErr = errors.NewAIError(errors.ErrCodeAIRateLimit, "Model provider rate limit exceeded", err)
	case status == http.StatusBadRequest && mentionsAPIKey(reason, message):
		appErr = errors.NewAIError(errors.ErrCodeAIAuth, "Model provider rejected the API key", err)
	default:
		appErr = errors.NewAIError(errors.ErrCodeAIServer, "Model provider returned an error", err)
	}
	return appErr.WithContext("status_code", status)
}

func mentionsAPIKey(parts ...string) bool {
	for _, p := range parts {
		lower := strings.ToLower(p)
		if strings.Contains(lower, "api key") || strings.Contains(lower, "api_key") {
			return true
		}
	}
	return false
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
