package config

import "fmt"

// Supported providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// SupportedProviders lists the values accepted for ai.provider.
var SupportedProviders = []string{ProviderGemini, ProviderOpenAI, ProviderOllama}

// Operation names, also used as config keys under ai.*
const (
	OperationGenerate    = "generate"
	OperationAnalyze     = "analyze"
	OperationCorrect     = "correct"
	OperationParseJob    = "parseJob"
	OperationParseResume = "parseResume"
)

// Operations lists every model-backed operation.
var Operations = []string{
	OperationGenerate,
	OperationAnalyze,
	OperationCorrect,
	OperationParseJob,
	OperationParseResume,
}

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	opCfg.Provider = c.AI.Provider
	opCfg.APIKey = c.AI.APIKey
	opCfg.BaseURL = c.AI.BaseURL

	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		timeout := c.AI.Timeout
		opCfg.Timeout = &timeout
	}
	if opCfg.MaxRetries == nil {
		retries := c.AI.MaxRetries
		opCfg.MaxRetries = &retries
	}
	if opCfg.Temperature == nil {
		temperature := c.AI.Temperature
		opCfg.Temperature = &temperature
	}
	if opCfg.UseSystemPrompts == nil {
		useSystem := c.AI.UseSystemPrompts
		opCfg.UseSystemPrompts = &useSystem
	}
}

// operationConfig returns a pointer to the raw per-operation section.
func (c *Config) operationConfig(op string) (*OperationAIConfig, error) {
	switch op {
	case OperationGenerate:
		return &c.AI.Generate, nil
	case OperationAnalyze:
		return &c.AI.Analyze, nil
	case OperationCorrect:
		return &c.AI.Correct, nil
	case OperationParseJob:
		return &c.AI.ParseJob, nil
	case OperationParseResume:
		return &c.AI.ParseResume, nil
	default:
		return nil, fmt.Errorf("unknown AI operation: %s", op)
	}
}

// GetOperationConfig returns the AI configuration for an operation with
// global fallbacks applied. Prompts loaded from files replace inline ones.
func (c *Config) GetOperationConfig(op string) (OperationAIConfig, error) {
	raw, err := c.operationConfig(op)
	if err != nil {
		return OperationAIConfig{}, err
	}

	cfg := *raw
	c.applyOperationDefaults(&cfg)

	loaded := GetLoadedPrompts().Get(op)
	if loaded.System != "" {
		cfg.Prompts.System = loaded.System
	}
	if loaded.User != "" {
		cfg.Prompts.User = loaded.User
	}

	return cfg, nil
}
