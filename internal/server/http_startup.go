package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/observability"
)

const shutdownTimeout = 30 * time.Second

// Start serves the API until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context, om *observability.ObservabilityManager) error {
	httpServer := s.setupHTTPServer(om)

	promptWatcher, err := s.startPromptWatcher()
	if err != nil {
		return err
	}
	refresher, err := s.startSecretRefresher()
	if err != nil {
		s.stopWatchers(promptWatcher, nil)
		return err
	}
	defer s.stopWatchers(promptWatcher, refresher)

	s.displayServerInfo()

	return s.startWithGracefulShutdown(ctx, httpServer)
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	mux := s.setupRoutes(om)
	handler := om.HTTPMiddleware()(requestIDMiddleware(mux))
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startPromptWatcher hot reloads prompt files when enabled. It returns nil
// when there is nothing to watch.
func (s *Server) startPromptWatcher() (*PromptWatcher, error) {
	if s.AppConfig == nil || !s.AppConfig.Server.PromptWatch.Enabled {
		return nil, nil
	}
	promptFiles := s.AppConfig.PromptFiles()
	if len(promptFiles) == 0 {
		s.Logger.Info("Prompt watching enabled but no prompt files are configured")
		return nil, nil
	}

	paths := make([]string, 0, len(promptFiles))
	for _, pf := range promptFiles {
		paths = append(paths, pf.Path)
	}

	watcher := NewPromptWatcher(paths, s.AppConfig.Server.PromptWatch.DebounceDelay, s.reloadPrompt, s.Logger)
	if err := watcher.Start(); err != nil {
		return nil, fmt.Errorf("failed to start prompt watcher: %w", err)
	}
	return watcher, nil
}

func (s *Server) reloadPrompt(path string) {
	ops, err := s.AppConfig.ReloadPromptFile(path)
	if err != nil {
		s.Logger.LogError(err, "Failed to reload prompt file, keeping previous prompts", "file", path)
		return
	}
	s.Logger.Info("Prompts reloaded", "file", path, "operations", ops)
}

// startSecretRefresher polls Vault for rotated API keys when enabled.
func (s *Server) startSecretRefresher() (*SecretRefresher, error) {
	if s.AppConfig == nil || !s.AppConfig.Server.SecretRefresh.Enabled {
		return nil, nil
	}
	vault := s.AppConfig.Vault
	if !vault.Enabled || vault.Secrets.APIKeys == "" {
		s.Logger.Warn("API key refresh enabled but Vault API keys are not configured")
		return nil, nil
	}

	client, err := config.NewVaultClient(vault, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vault client: %w", err)
	}

	_, version, err := client.ServerAPIKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to read API keys from vault: %w", err)
	}

	refresher := NewSecretRefresher(client, s.AppConfig.Server.SecretRefresh.PollInterval, version, s.SetAPIKeys, s.Logger)
	if err := refresher.Start(); err != nil {
		return nil, err
	}
	return refresher, nil
}

func (s *Server) stopWatchers(pw *PromptWatcher, sr *SecretRefresher) {
	if pw != nil {
		if err := pw.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop prompt watcher")
		}
	}
	if sr != nil {
		if err := sr.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop API key refresher")
		}
	}
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(ctx context.Context, server *http.Server) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.cleanupRateLimiter()
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Received shutdown signal, starting graceful shutdown")
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.cleanupRateLimiter()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanupRateLimiter cleans up the rate limiter resources
func (s *Server) cleanupRateLimiter() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
