package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httpProviderConfig(provider, baseURL string) config.OperationAIConfig {
	return config.OperationAIConfig{
		Provider:         provider,
		APIKey:           "sk-test",
		BaseURL:          baseURL,
		Model:            "gpt-4o-mini",
		Timeout:          timePtr(5 * time.Second),
		MaxRetries:       intPtr(2),
		Temperature:      float32Ptr(0.2),
		UseSystemPrompts: new(bool),
	}
}

func newTestHTTPProvider(t *testing.T, cfg config.OperationAIConfig) *HTTPProvider {
	t.Helper()
	p, err := NewHTTPProvider(cfg, config.OperationGenerate, nil, errors.NewDiscardLogger())
	require.NoError(t, err)
	p.retrier.sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func TestHTTPProviderChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be terse", req.Messages[0].Content)
		assert.Equal(t, "hello", req.Messages[1].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"full_name\":\"Ada\"}"}}],
			"usage":{"prompt_tokens":10,"completion_tokens":4,"total_tokens":14}}`))
	}))
	defer srv.Close()

	cfg := httpProviderConfig(config.ProviderOpenAI, srv.URL+"/")
	useSystem := true
	cfg.UseSystemPrompts = &useSystem
	p := newTestHTTPProvider(t, cfg)

	text, usage, err := p.Generate(context.Background(), "be terse", "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"full_name":"Ada"}`, text)
	require.NotNil(t, usage)
	assert.Equal(t, int64(14), usage.TotalTokens)
}

func TestHTTPProviderOllama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			var req ollamaRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.False(t, req.Stream)
			assert.Equal(t, "llama3", req.Model)
			assert.Empty(t, req.System)
			_, _ = w.Write([]byte(`{"response":"NO_ISSUES","prompt_eval_count":3,"eval_count":2}`))
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3:latest"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := httpProviderConfig(config.ProviderOllama, srv.URL)
	cfg.Model = "llama3"
	cfg.APIKey = ""
	p := newTestHTTPProvider(t, cfg)

	text, usage, err := p.Generate(context.Background(), "ignored", "analyze this")
	require.NoError(t, err)
	assert.Equal(t, "NO_ISSUES", text)
	assert.Equal(t, int64(5), usage.TotalTokens)

	info := p.GetModelInfo(context.Background())
	assert.True(t, info.Available)
	assert.Equal(t, "llama3:latest", info.DisplayName)
}

func TestHTTPProviderRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("busy"))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	p := newTestHTTPProvider(t, httpProviderConfig(config.ProviderOpenAI, srv.URL))

	text, _, err := p.Generate(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPProviderDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	p := newTestHTTPProvider(t, httpProviderConfig(config.ProviderOpenAI, srv.URL))

	_, _, err := p.Generate(context.Background(), "", "hi")
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPProviderNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := newTestHTTPProvider(t, httpProviderConfig(config.ProviderOpenAI, srv.URL))
	_, _, err := p.Generate(context.Background(), "", "hi")
	assert.ErrorContains(t, err, "no choices")
}

func TestNewHTTPProviderRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPProvider(httpProviderConfig(config.ProviderOpenAI, ""), config.OperationGenerate, nil, nil)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.Code(err))
}
