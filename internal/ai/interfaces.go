package ai

import (
	"context"
)

// SchemaName selects the structured-output schema a completion must follow
type SchemaName string

const (
	SchemaNone     SchemaName = ""
	SchemaKeywords SchemaName = "keywords"
	SchemaResume   SchemaName = "resume"
)

// CompletionRequest is a single prompt sent to the language model
type CompletionRequest struct {
	Operation       string
	Prompt          string
	SystemPrompt    string
	MaxOutputTokens int32
	Temperature     *float32 // nil uses the operation default
	Structured      bool     // request a JSON response
	Schema          SchemaName
}

// Completer is the language-model completion service. Failures are
// *errors.AppError values of type ai with one of the AI_AUTH,
// AI_RATE_LIMIT, AI_SERVER or AI_EMPTY_RESPONSE codes.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, *TokenUsage, error)
}

// CompleterFunc adapts a function to the Completer interface
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, *TokenUsage, error)

func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, *TokenUsage, error) {
	return f(ctx, req)
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
