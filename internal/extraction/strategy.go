package extraction

import (
	"context"
	"fmt"

	"atsmatch/internal/ai"
	"atsmatch/internal/config"
	"atsmatch/internal/types"
)

// Strategy names
const (
	StrategyTwoPass    = "two-pass"
	StrategySinglePass = "single-pass"
)

// Pass is one model call of a strategy. The output text of a pass is the
// input of the next one; the last pass must produce the JSON document.
type Pass struct {
	Operation string
	Prompts   ai.Prompts
}

// Strategy is a parameterized way of turning resume text into a document:
// its passes and how strictly the final payload is validated
type Strategy struct {
	Name   string
	Passes []Pass
	Strict bool
}

// PromptSet holds the prompts used by the built-in strategies
type PromptSet struct {
	ExtractText ai.Prompts
	Structure   ai.Prompts
	SinglePass  ai.Prompts
}

// DefaultPromptSet returns the built-in extraction prompts
func DefaultPromptSet() PromptSet {
	return PromptSet{
		ExtractText: ai.DefaultPrompts(ai.PromptExtractText),
		Structure:   ai.DefaultPrompts(ai.PromptStructure),
		SinglePass:  ai.DefaultPrompts(ai.PromptSinglePass),
	}
}

// ResolvePromptSet resolves the extraction prompts from prompt files,
// inline configuration and defaults
func ResolvePromptSet(cfg *config.Config) PromptSet {
	return PromptSet{
		ExtractText: ai.ResolvePrompts(ai.PromptExtractText, cfg.GetOperationConfig(config.OperationExtractText)),
		Structure:   ai.ResolvePrompts(ai.PromptStructure, cfg.GetOperationConfig(config.OperationStructure)),
		SinglePass:  ai.ResolvePromptConfig(ai.PromptSinglePass, cfg.Extraction.SinglePassPrompts),
	}
}

// NewStrategy builds a named built-in strategy
func NewStrategy(name string, prompts PromptSet) (Strategy, error) {
	switch name {
	case StrategyTwoPass:
		return Strategy{
			Name: StrategyTwoPass,
			Passes: []Pass{
				{Operation: config.OperationExtractText, Prompts: prompts.ExtractText},
				{Operation: config.OperationStructure, Prompts: prompts.Structure},
			},
			Strict: true,
		}, nil
	case StrategySinglePass:
		return Strategy{
			Name:   StrategySinglePass,
			Passes: []Pass{{Operation: config.OperationStructure, Prompts: prompts.SinglePass}},
			Strict: false,
		}, nil
	default:
		return Strategy{}, fmt.Errorf("unknown extraction strategy: %s", name)
	}
}

// NewStrategies builds the named strategies in order
func NewStrategies(names []string, prompts PromptSet) ([]Strategy, error) {
	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, err := NewStrategy(name, prompts)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}

// Run executes every pass of the strategy once. Only the final payload is
// parsed; intermediate passes hand their text on unchanged.
func (s Strategy) Run(ctx context.Context, c ai.Completer, input string) ai.Result[types.ResumeDocument] {
	if len(s.Passes) == 0 {
		return ai.Failed[types.ResumeDocument](fmt.Errorf("strategy %s has no passes", s.Name), nil)
	}

	text := input
	for _, pass := range s.Passes[:len(s.Passes)-1] {
		res := ai.Call(ctx, c, pass.request(text, false), passThrough)
		if !res.OK() {
			return ai.Failed[types.ResumeDocument](res.Err, res.Usage)
		}
		text = res.Value
	}

	last := s.Passes[len(s.Passes)-1]
	return ai.Call(ctx, c, last.request(text, true), func(payload string) (types.ResumeDocument, error) {
		return ParseDocument(payload, s.Strict)
	})
}

func (p Pass) request(text string, structured bool) ai.CompletionRequest {
	req := ai.CompletionRequest{
		Operation:    p.Operation,
		Prompt:       p.Prompts.Format(text),
		SystemPrompt: p.Prompts.System,
		Structured:   structured,
	}
	if structured {
		req.Schema = ai.SchemaResume
	}
	return req
}

func passThrough(text string) (string, error) {
	return text, nil
}
