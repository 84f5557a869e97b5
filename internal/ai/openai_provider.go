package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"resumeforge/internal/config"
	appErrors "resumeforge/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// HTTPProvider talks to an OpenAI-compatible chat completions endpoint or to
// the native Ollama generate endpoint. The mode follows the configured provider.
type HTTPProvider struct {
	provider       string
	baseURL        string
	apiKey         string
	config         config.OperationAIConfig
	operation      string
	httpClient     *http.Client
	retrier        *retrier
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *appErrors.Logger
}

var _ Provider = (*HTTPProvider)(nil)

// NewHTTPProvider creates a provider for the openai or ollama backends.
// A nil httpClient gets one with the operation timeout.
func NewHTTPProvider(cfg config.OperationAIConfig, operation string, httpClient *http.Client, logger *appErrors.Logger) (*HTTPProvider, error) {
	if cfg.BaseURL == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeInvalidConfig,
			fmt.Sprintf("base URL is required for provider %s", cfg.Provider), nil)
	}
	if logger == nil {
		logger = appErrors.NewDiscardLogger()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: *cfg.Timeout}
	}

	return &HTTPProvider{
		provider:       cfg.Provider,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		config:         cfg,
		operation:      operation,
		httpClient:     httpClient,
		retrier:        newRetrier(*cfg.MaxRetries, logger),
		circuitBreaker: NewAICircuitBreaker(operation, &cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operation, &cfg, logger),
		logger:         logger,
	}, nil
}

// chatRequest mirrors the OpenAI /chat/completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse mirrors the relevant fields of the OpenAI response.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// ollamaRequest mirrors the Ollama /api/generate request body.
type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int64  `json:"prompt_eval_count"`
	EvalCount       int64  `json:"eval_count"`
	Error           string `json:"error,omitempty"`
}

// Generate sends one prompt and returns the reply text.
func (p *HTTPProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, *TokenUsage, error) {
	tracer := otel.Tracer("resumeforge.ai." + p.provider)
	ctx, span := tracer.Start(ctx, p.provider+".complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", p.provider),
		attribute.String("ai.model", p.config.Model),
		attribute.String("ai.operation", p.operation),
		attribute.Float64("ai.temperature", float64(*p.config.Temperature)),
		attribute.Int("input.prompt_length", len(userPrompt)),
	)

	if !*p.config.UseSystemPrompts {
		systemPrompt = ""
	}

	result, err := p.circuitBreaker.Execute(func() (completion, error) {
		return executeWithRetry(ctx, p.retrier, p.operation, func() (completion, error) {
			if p.provider == config.ProviderOllama {
				return p.ollamaGenerate(ctx, systemPrompt, userPrompt)
			}
			return p.chatComplete(ctx, systemPrompt, userPrompt)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, err
	}

	span.SetAttributes(attribute.Bool("success", true), attribute.Int("output.length", len(result.text)))
	return result.text, result.usage, nil
}

func (p *HTTPProvider) chatComplete(ctx context.Context, systemPrompt, userPrompt string) (completion, error) {
	reqBody := chatRequest{Model: p.config.Model}
	if systemPrompt != "" {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	reqBody.Messages = append(reqBody.Messages, chatMessage{Role: "user", Content: userPrompt})
	if *p.config.Temperature > 0 {
		reqBody.Temperature = p.config.Temperature
	}

	respBytes, err := p.post(ctx, "/chat/completions", reqBody)
	if err != nil {
		return completion{}, err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return completion{}, fmt.Errorf("parse llm response: %w", err)
	}
	if chatResp.Error != nil {
		return completion{}, fmt.Errorf("llm error (%s): %s", chatResp.Error.Type, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return completion{}, fmt.Errorf("llm returned no choices")
	}

	out := completion{text: chatResp.Choices[0].Message.Content}
	if chatResp.Usage != nil {
		out.usage = &TokenUsage{
			InputTokens:  chatResp.Usage.PromptTokens,
			OutputTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:  chatResp.Usage.TotalTokens,
		}
	}
	return out, nil
}

func (p *HTTPProvider) ollamaGenerate(ctx context.Context, systemPrompt, userPrompt string) (completion, error) {
	reqBody := ollamaRequest{
		Model:  p.config.Model,
		Prompt: userPrompt,
		System: systemPrompt,
	}
	if *p.config.Temperature > 0 {
		reqBody.Options = map[string]any{"temperature": *p.config.Temperature}
	}

	respBytes, err := p.post(ctx, "/api/generate", reqBody)
	if err != nil {
		return completion{}, err
	}

	var genResp ollamaResponse
	if err := json.Unmarshal(respBytes, &genResp); err != nil {
		return completion{}, fmt.Errorf("parse ollama response: %w", err)
	}
	if genResp.Error != "" {
		return completion{}, fmt.Errorf("ollama error: %s", genResp.Error)
	}

	return completion{
		text: genResp.Response,
		usage: &TokenUsage{
			InputTokens:  genResp.PromptEvalCount,
			OutputTokens: genResp.EvalCount,
			TotalTokens:  genResp.PromptEvalCount + genResp.EvalCount,
		},
	}, nil
}

func (p *HTTPProvider) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal llm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	return p.do(req)
}

func (p *HTTPProvider) do(req *http.Request) ([]byte, error) {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read llm response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newHTTPError(resp, respBytes)
	}
	return respBytes, nil
}

// GetModelInfo lists the backend's models and reports whether the configured one is present.
func (p *HTTPProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{Name: p.config.Model, Provider: p.provider}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	info, err := p.modelBreaker.ExecuteModel(func() (*ModelInfo, error) {
		names, err := p.listModels(checkCtx)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if name == p.config.Model || strings.TrimSuffix(name, ":latest") == p.config.Model {
				return &ModelInfo{DisplayName: name}, nil
			}
		}
		return nil, fmt.Errorf("model %s not offered by %s", p.config.Model, p.baseURL)
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		p.logger.Warn("Model availability check failed",
			"model", p.config.Model,
			"provider", p.provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = info.DisplayName
	return modelInfo
}

func (p *HTTPProvider) listModels(ctx context.Context) ([]string, error) {
	path := "/models"
	if p.provider == config.ProviderOllama {
		path = "/api/tags"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	body, err := p.do(req)
	if err != nil {
		return nil, err
	}

	var listing struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("parse model listing: %w", err)
	}

	names := make([]string, 0, len(listing.Data)+len(listing.Models))
	for _, m := range listing.Data {
		names = append(names, m.ID)
	}
	for _, m := range listing.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (p *HTTPProvider) GetCircuitBreakerStats() map[string]any {
	return breakerStats(p.circuitBreaker, p.modelBreaker)
}

// Close releases idle connections.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
