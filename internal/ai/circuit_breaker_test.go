package ai

import (
	"errors"
	"testing"
	"time"

	"resumeforge/internal/config"
)

func breakerConfig(maxRequests, minRequests uint32, threshold float64) *config.OperationAIConfig {
	return &config.OperationAIConfig{
		Provider: config.ProviderGemini,
		Model:    "gemini-2.0-flash",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      maxRequests,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      minRequests,
			FailureThreshold: threshold,
		},
	}
}

func TestIndependentCircuitBreakerConfigurations(t *testing.T) {
	generateCB := NewAICircuitBreaker(config.OperationGenerate, breakerConfig(3, 3, 0.6), nil)
	analyzeCB := NewAICircuitBreaker(config.OperationAnalyze, breakerConfig(5, 2, 0.7), nil)
	correctCB := NewAICircuitBreaker(config.OperationCorrect, breakerConfig(4, 5, 0.5), nil)

	tests := []struct {
		name         string
		cb           *AICircuitBreaker
		expectedName string
	}{
		{"generate", generateCB, "AI-generate"},
		{"analyze", analyzeCB, "AI-analyze"},
		{"correct", correctCB, "AI-correct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := tt.cb.GetStats()

			name, ok := stats["name"].(string)
			if !ok {
				t.Fatal("Circuit breaker name not found")
			}
			if name != tt.expectedName {
				t.Errorf("Expected circuit breaker name '%s', got '%s'", tt.expectedName, name)
			}

			state, ok := stats["state"].(string)
			if !ok {
				t.Fatal("Circuit breaker state not found")
			}
			if state != "closed" {
				t.Errorf("Expected initial state 'closed', got '%s'", state)
			}

			if enabled, _ := stats["enabled"].(bool); !enabled {
				t.Error("Circuit breaker should be enabled")
			}
			if !tt.cb.IsHealthy() {
				t.Error("Circuit breaker should be healthy initially")
			}
		})
	}

	t.Run("IndependentInstances", func(t *testing.T) {
		if generateCB == analyzeCB || generateCB == correctCB || analyzeCB == correctCB {
			t.Error("Each operation should own a distinct circuit breaker")
		}
	})
}

func TestCircuitBreakerTrips(t *testing.T) {
	cb := NewAICircuitBreaker("trip", breakerConfig(1, 2, 0.5), nil)
	failure := errors.New("backend down")

	for range 2 {
		_, err := cb.Execute(func() (completion, error) { return completion{}, failure })
		if !errors.Is(err, failure) {
			t.Fatalf("expected backend error, got %v", err)
		}
	}

	if cb.IsHealthy() {
		t.Fatal("Circuit breaker should be open after repeated failures")
	}

	called := false
	_, err := cb.Execute(func() (completion, error) {
		called = true
		return completion{text: "ok"}, nil
	})
	if err == nil {
		t.Fatal("Open circuit breaker should reject calls")
	}
	if called {
		t.Error("Open circuit breaker should not invoke the function")
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	disabledConfig := &config.OperationAIConfig{
		Provider:       config.ProviderGemini,
		Model:          "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{Enabled: false},
	}

	cb := NewAICircuitBreaker("disabled", disabledConfig, nil)
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	// A nil breaker passes calls through.
	result, err := cb.Execute(func() (completion, error) { return completion{text: "hello"}, nil })
	if err != nil || result.text != "hello" {
		t.Errorf("expected pass-through result, got %q, %v", result.text, err)
	}
	if !cb.IsHealthy() {
		t.Error("nil breaker should report healthy")
	}
	if enabled := cb.GetStats()["enabled"]; enabled != false {
		t.Errorf("expected enabled=false, got %v", enabled)
	}

	var mcb *ModelCircuitBreaker
	info, err := mcb.ExecuteModel(func() (*ModelInfo, error) { return &ModelInfo{Name: "m"}, nil })
	if err != nil || info.Name != "m" {
		t.Errorf("expected pass-through model info, got %+v, %v", info, err)
	}
}
