package ai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"atsmatch/internal/errors"
)

// FailureKind names why a model call did not yield a usable payload
type FailureKind string

const (
	FailureNone          FailureKind = ""
	FailureAuth          FailureKind = "auth"
	FailureRateLimit     FailureKind = "rate_limit"
	FailureServer        FailureKind = "server"
	FailureEmptyResponse FailureKind = "empty_response"
	FailureParse         FailureKind = "parse"
)

// Result is the outcome of a model call, parsed exactly once right after
// the call. Either Value is set and Kind is FailureNone, or Kind and Err
// describe the failure.
type Result[T any] struct {
	Value T
	Kind  FailureKind
	Err   error
	Usage *TokenUsage
}

// OK reports whether the result carries a value
func (r Result[T]) OK() bool {
	return r.Kind == FailureNone
}

// Succeeded wraps a parsed value
func Succeeded[T any](value T, usage *TokenUsage) Result[T] {
	return Result[T]{Value: value, Usage: usage}
}

// Failed wraps an error, classifying it into a FailureKind
func Failed[T any](err error, usage *TokenUsage) Result[T] {
	return Result[T]{Kind: KindOf(err), Err: err, Usage: usage}
}

// Call runs a completion and parses its text with parse. Completion and
// parse errors both end up in the returned Result.
func Call[T any](ctx context.Context, c Completer, req CompletionRequest, parse func(string) (T, error)) Result[T] {
	text, usage, err := c.Complete(ctx, req)
	if err != nil {
		return Failed[T](err, usage)
	}
	if strings.TrimSpace(text) == "" {
		return Failed[T](errors.NewAIError(errors.ErrCodeAIEmptyResponse,
			"Model returned an empty response for "+req.Operation, nil), usage)
	}
	value, err := parse(text)
	if err != nil {
		return Failed[T](err, usage)
	}
	return Succeeded(value, usage)
}

// KindOf maps an error to its FailureKind
func KindOf(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return FailureServer
	}
	if appErr.Type == errors.ErrorTypeParse {
		return FailureParse
	}
	switch appErr.Code {
	case errors.ErrCodeAIAuth, errors.ErrCodeMissingAPIKey:
		return FailureAuth
	case errors.ErrCodeAIRateLimit:
		return FailureRateLimit
	case errors.ErrCodeAIEmptyResponse:
		return FailureEmptyResponse
	case errors.ErrCodeParseFailed, errors.ErrCodeSchemaMismatch:
		return FailureParse
	}
	return FailureServer
}

// StripCodeFence removes a surrounding markdown code fence, with or
// without a language tag
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		// drop the language tag line
		if tag := strings.TrimSpace(text[:nl]); !strings.ContainsAny(tag, "{[") {
			text = text[nl+1:]
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// DecodeObject strips code fences and decodes a JSON object. Content that
// does not start as an object is a parse error.
func DecodeObject(text string) (map[string]any, error) {
	cleaned := StripCodeFence(text)
	if !strings.HasPrefix(cleaned, "{") {
		return nil, errors.NewParseError(errors.ErrCodeParseFailed,
			"Model response is not a JSON object", nil)
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, errors.NewParseError(errors.ErrCodeParseFailed,
			"Model response is not valid JSON", err)
	}
	return obj, nil
}
