package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	plain := NewValidationError(ErrCodeInvalidRequest, "bad input", nil)
	assert.Equal(t, "INVALID_REQUEST: bad input", plain.Error())

	wrapped := NewIOError(ErrCodeFileNotFound, "missing", stderrors.New("no such file"))
	assert.Equal(t, "FILE_NOT_FOUND: missing (caused by: no such file)", wrapped.Error())
	assert.Equal(t, ErrorTypeIO, wrapped.Type)
}

func TestAppErrorIsAndUnwrap(t *testing.T) {
	err := NewWorkflowError(ErrCodeMaxIterations, "gave up after 3 passes", ErrMaxIterations)
	chained := fmt.Errorf("tailor: %w", err)

	assert.True(t, stderrors.Is(chained, ErrMaxIterations))
	assert.True(t, stderrors.Is(chained, &AppError{Code: ErrCodeMaxIterations}))
	assert.False(t, stderrors.Is(chained, &AppError{Code: ErrCodeGenerationFailed}))
	assert.False(t, stderrors.Is(chained, &AppError{}))
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", stderrors.New("boom"), ""},
		{"app error", NewAIError(ErrCodeCompletionTimeout, "slow", nil), ErrCodeCompletionTimeout},
		{"wrapped", fmt.Errorf("outer: %w", NewNetworkError(ErrCodeFetchFailed, "down", nil)), ErrCodeFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestWithContext(t *testing.T) {
	err := NewConfigError(ErrCodeInvalidConfig, "bad", nil).
		WithContext("field", "ai.model").
		WithContext("value", 3)
	assert.Equal(t, map[string]any{"field": "ai.model", "value": 3}, err.Context)
}

func TestLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, slog.LevelDebug).With("component", "test")

	err := NewAIError(ErrCodeAIServiceFailed, "provider down", stderrors.New("503")).
		WithContext("operation", "generate")
	logger.LogError(err, "completion failed", "attempt", 2)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "completion failed", record["msg"])
	assert.Equal(t, "AI_SERVICE_FAILED", record["error_code"])
	assert.Equal(t, "503", record["cause"])
	assert.Equal(t, "generate", record["operation"])
	assert.Equal(t, "test", record["component"])
	assert.EqualValues(t, 2, record["attempt"])
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}

	_, err := New("verbose")
	assert.Error(t, err)
}
