package config

// Model operations with their own configuration section under "ai"
const (
	OperationCategorize  = "categorize"
	OperationExtractText = "extractText"
	OperationStructure   = "structure"
)

// Operations lists every configurable model operation
var Operations = []string{OperationCategorize, OperationExtractText, OperationStructure}

// PromptSinglePass names the prompts of the single-pass extraction
// strategy, configured under extraction.singlePassPrompts
const PromptSinglePass = "singlePass"

type promptSlot struct {
	name    string
	prompts *PromptConfig
}

// promptSlots lists every configurable prompt pair: one per operation plus
// the single-pass extraction prompts
func (c *Config) promptSlots() []promptSlot {
	slots := make([]promptSlot, 0, len(Operations)+1)
	for _, op := range Operations {
		slots = append(slots, promptSlot{name: op, prompts: &c.operationConfigRef(op).Prompts})
	}
	return append(slots, promptSlot{name: PromptSinglePass, prompts: &c.Extraction.SinglePassPrompts})
}

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	if opCfg.MaxOutputTokens == nil {
		opCfg.MaxOutputTokens = &c.AI.MaxOutputTokens
	}
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetOperationConfig returns the AI configuration for an operation with
// fallback to the global config. Unknown operations get the global values.
func (c *Config) GetOperationConfig(operation string) OperationAIConfig {
	var config OperationAIConfig
	switch operation {
	case OperationCategorize:
		config = c.AI.Categorize
	case OperationExtractText:
		config = c.AI.ExtractText
	case OperationStructure:
		config = c.AI.Structure
	}

	c.applyOperationDefaults(&config)
	return config
}

// GetCategorizeConfig returns the AI configuration for keyword categorization
func (c *Config) GetCategorizeConfig() OperationAIConfig {
	return c.GetOperationConfig(OperationCategorize)
}

// GetExtractTextConfig returns the AI configuration for the free-form resume pass
func (c *Config) GetExtractTextConfig() OperationAIConfig {
	return c.GetOperationConfig(OperationExtractText)
}

// GetStructureConfig returns the AI configuration for structured resume output
func (c *Config) GetStructureConfig() OperationAIConfig {
	return c.GetOperationConfig(OperationStructure)
}

func (c *Config) operationConfigRef(operation string) *OperationAIConfig {
	switch operation {
	case OperationCategorize:
		return &c.AI.Categorize
	case OperationExtractText:
		return &c.AI.ExtractText
	case OperationStructure:
		return &c.AI.Structure
	}
	return nil
}

// OperationAPIKey returns the API key an operation section sets for
// itself, or "" when it shares the global key
func (c *Config) OperationAPIKey(operation string) string {
	ref := c.operationConfigRef(operation)
	if ref == nil || ref.APIKey == c.AI.APIKey {
		return ""
	}
	return ref.APIKey
}
