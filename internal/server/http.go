package server

import (
	"context"
	"sync"
	"time"

	"resumeforge/internal/ai"
	"resumeforge/internal/config"
	resumeErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// Backend is the work the API exposes. *common.Pipeline implements it.
type Backend interface {
	ResolveJob(ctx context.Context, req types.TailorRequest) (types.JobRequirement, error)
	ParseResume(ctx context.Context, text string) (types.CandidateResume, error)
	Tailor(ctx context.Context, base types.CandidateResume, job types.JobRequirement) (types.TailorResult, error)
	History(ctx context.Context, limit int) ([]types.RunRecord, error)
	Run(ctx context.Context, id string) (types.RunRecord, error)
	ModelStatus(ctx context.Context) map[string]*ai.ModelInfo
	Stats() map[string]any
}

// TailorResponse is the body returned by POST /tailor.
type TailorResponse struct {
	RunID            string                `json:"run_id,omitempty"`
	Resume           types.CandidateResume `json:"resume"`
	JobDescription   types.JobRequirement  `json:"job_description"`
	Iterations       int                   `json:"iterations"`
	StopReason       string                `json:"stop_reason"`
	ValidationErrors []string              `json:"validation_errors"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	Backend Backend

	// API Authentication, replaced when keys are rotated in Vault
	keysMu  sync.RWMutex
	apiKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *resumeErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// ServerConfigFrom builds a ServerConfig from the loaded configuration.
func ServerConfigFrom(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, backend Backend, logger *resumeErrors.Logger) *Server {
	if logger == nil {
		logger = resumeErrors.NewDiscardLogger()
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	s := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		Backend:        backend,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
	s.SetAPIKeys(cfg.APIKeys)
	return s
}

// SetAPIKeys replaces the accepted API keys. An empty set disables authentication.
func (s *Server) SetAPIKeys(keys []string) {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	s.keysMu.Lock()
	s.apiKeys = apiKeyMap
	s.keysMu.Unlock()
}

// apiKeyState reports whether authentication is enabled and whether key is accepted.
func (s *Server) apiKeyState(key string) (enabled, valid bool) {
	s.keysMu.RLock()
	defer s.keysMu.RUnlock()
	return len(s.apiKeys) > 0, s.apiKeys[key]
}

func (s *Server) apiKeyCount() int {
	s.keysMu.RLock()
	defer s.keysMu.RUnlock()
	return len(s.apiKeys)
}
