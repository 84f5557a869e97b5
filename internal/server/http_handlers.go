package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	resumeErrors "resumeforge/internal/errors"
	"resumeforge/internal/store"

	"github.com/go-playground/validator/v10"
)

const healthCheckTimeout = 10 * time.Second

var validate = validator.New()

// healthHandler reports the service status and the model behind every AI operation
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	models := s.Backend.ModelStatus(ctx)

	response := map[string]any{
		"status":           "healthy",
		"service":          "resumeforge",
		"version":          s.Version,
		"ai_models":        models,
		"circuit_breakers": s.Backend.Stats(),
	}

	status := http.StatusOK
	for _, info := range models {
		if info == nil || !info.Available {
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
			break
		}
	}

	s.writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumeforge",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_keys_configured":    s.apiKeyCount(),
		},
		"circuit_breakers": s.Backend.Stats(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	s.writeJSON(w, http.StatusOK, response)
}

// runsHandler lists recent tailoring runs. ?limit= caps the result.
func (s *Server) runsHandler(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeErrorResponse(w, "Invalid limit", "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.Backend.History(r.Context(), limit)
	if err != nil {
		s.writeAppError(w, "Failed to list runs", err)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// runHandler returns one run including its tailored resume.
func (s *Server) runHandler(w http.ResponseWriter, r *http.Request) {
	run, err := s.Backend.Run(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeAppError(w, "Failed to load run", err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

// parseJSONRequest parses and validates a JSON request body into v
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	if err := validate.Struct(v); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			return fmt.Errorf("invalid request: %s", describeValidation(invalid))
		}
		return err
	}
	return nil
}

func describeValidation(errs validator.ValidationErrors) string {
	msg := ""
	for i, fe := range errs {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
	return msg
}

// statusForError maps an application error code to an HTTP status.
func statusForError(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}

	switch resumeErrors.Code(err) {
	case resumeErrors.ErrCodeInvalidRequest, resumeErrors.ErrCodeInvalidFormat,
		resumeErrors.ErrCodeUnsupportedFile, resumeErrors.ErrCodeNoChunks:
		return http.StatusBadRequest
	case resumeErrors.ErrCodeCompletionTimeout, resumeErrors.ErrCodeAITimeout, resumeErrors.ErrCodeNetworkTimeout:
		return http.StatusGatewayTimeout
	case resumeErrors.ErrCodeFetchFailed, resumeErrors.ErrCodeCompletionFailed, resumeErrors.ErrCodeCompletionEmpty,
		resumeErrors.ErrCodeAIServiceFailed, resumeErrors.ErrCodeNoPayload, resumeErrors.ErrCodeMalformedJSON:
		return http.StatusBadGateway
	case resumeErrors.ErrCodeGenerationFailed, resumeErrors.ErrCodeMaxIterations:
		return http.StatusUnprocessableEntity
	case resumeErrors.ErrCodeCancelled:
		return http.StatusRequestTimeout
	case resumeErrors.ErrCodeInvalidConfig:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError logs err and writes it with the status its code maps to.
func (s *Server) writeAppError(w http.ResponseWriter, title string, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, title)
	} else {
		s.Logger.Debug(title, "error", err.Error())
	}

	response := ErrorResponse{
		Error:   title,
		Message: err.Error(),
		Code:    resumeErrors.Code(err),
	}
	s.writeJSON(w, status, response)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.LogError(err, "Failed to encode response")
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
