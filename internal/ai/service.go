package ai

import (
	"context"
	stderrors "errors"
	"fmt"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
)

// Service owns one provider per operation and hands out guarded completers.
type Service struct {
	config     *config.Config
	providers  map[string]Provider
	completers map[string]Completer
	logger     *errors.Logger
}

// NewService creates a provider for every operation using the configured backend.
// observer may be nil.
func NewService(cfg *config.Config, logger *errors.Logger, observer Observer) (*Service, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	s := &Service{
		config:     cfg,
		providers:  make(map[string]Provider, len(config.Operations)),
		completers: make(map[string]Completer, len(config.Operations)),
		logger:     logger,
	}

	for _, op := range config.Operations {
		opCfg, err := cfg.GetOperationConfig(op)
		if err != nil {
			return nil, err
		}

		logger.Debug("Initializing AI service",
			"provider", opCfg.Provider,
			"operation_type", op,
			"model", opCfg.Model,
			"temperature", *opCfg.Temperature,
			"timeout", *opCfg.Timeout,
			"max_retries", *opCfg.MaxRetries,
			"use_system_prompts", *opCfg.UseSystemPrompts)

		provider, err := NewProvider(opCfg, op, logger)
		if err != nil {
			_ = s.Close()
			return nil, err
		}

		s.providers[op] = provider
		s.completers[op] = Guard(provider, op, *opCfg.Timeout, s.systemPromptFunc(op), observer)
	}

	return s, nil
}

// NewProvider builds the backend selected by cfg.Provider.
func NewProvider(cfg config.OperationAIConfig, operation string, logger *errors.Logger) (Provider, error) {
	var provider Provider
	var err error

	switch cfg.Provider {
	case config.ProviderGemini:
		provider, err = NewGeminiProvider(cfg, operation, logger)
	case config.ProviderOpenAI, config.ProviderOllama:
		provider, err = NewHTTPProvider(cfg, operation, nil, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, err
		}
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}
	return provider, nil
}

// Completer returns the guarded completer for an operation.
func (s *Service) Completer(op string) Completer {
	return s.completers[op]
}

// UserPrompt returns the active user prompt template for an operation.
// It is resolved on every call so reloaded prompt files take effect.
func (s *Service) UserPrompt(op string) string {
	opCfg, err := s.config.GetOperationConfig(op)
	if err != nil {
		return DefaultUserPrompts[op]
	}
	return resolvePrompt(opCfg.Prompts.User, DefaultUserPrompts[op])
}

// SystemPrompt returns the active system prompt for an operation.
func (s *Service) SystemPrompt(op string) string {
	opCfg, err := s.config.GetOperationConfig(op)
	if err != nil {
		return DefaultSystemPrompts[op]
	}
	return resolvePrompt(opCfg.Prompts.System, DefaultSystemPrompts[op])
}

func (s *Service) systemPromptFunc(op string) func() string {
	return func() string { return s.SystemPrompt(op) }
}

// GetModelInfo returns information about the model behind an operation for health checks
func (s *Service) GetModelInfo(ctx context.Context, op string) *ModelInfo {
	provider, ok := s.providers[op]
	if !ok {
		return &ModelInfo{Name: op, Error: "unknown operation"}
	}
	return provider.GetModelInfo(ctx)
}

// Stats returns circuit breaker statistics per operation.
func (s *Service) Stats() map[string]any {
	stats := make(map[string]any, len(s.providers))
	for op, provider := range s.providers {
		stats[op] = provider.GetCircuitBreakerStats()
	}
	return stats
}

// Close closes every provider.
func (s *Service) Close() error {
	var errs []error
	for _, provider := range s.providers {
		if err := provider.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
