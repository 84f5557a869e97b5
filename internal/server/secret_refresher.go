package server

import (
	"fmt"
	"sync"
	"time"

	"resumeforge/internal/errors"
)

// APIKeySource reads the current server API keys and their secret version.
// *config.VaultClient implements it.
type APIKeySource interface {
	ServerAPIKeys() ([]string, int64, error)
}

// SecretRefresher polls Vault for rotated API keys and applies new versions
type SecretRefresher struct {
	mu sync.RWMutex

	source       APIKeySource
	pollInterval time.Duration
	apply        func(keys []string)
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
}

// NewSecretRefresher creates a refresher that calls apply whenever the secret
// version increases. initialVersion is the version already applied.
func NewSecretRefresher(source APIKeySource, pollInterval time.Duration, initialVersion int64, apply func(keys []string), logger *errors.Logger) *SecretRefresher {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &SecretRefresher{
		source:       source,
		pollInterval: pollInterval,
		apply:        apply,
		logger:       logger,
		lastVersion:  initialVersion,
	}
}

// Start begins polling. A stopped refresher can be started again.
func (sr *SecretRefresher) Start() error {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if sr.running {
		return fmt.Errorf("secret refresher is already running")
	}
	sr.stopChan = make(chan struct{})
	sr.running = true
	go sr.pollLoop(sr.stopChan)
	sr.logger.Info("API key refresher started", "poll_interval", sr.pollInterval)
	return nil
}

// Stop stops polling
func (sr *SecretRefresher) Stop() error {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if !sr.running {
		return nil
	}
	close(sr.stopChan)
	sr.running = false
	sr.logger.Info("API key refresher stopped")
	return nil
}

func (sr *SecretRefresher) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(sr.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := sr.refresh(); err != nil {
				sr.logger.LogError(err, "Failed to check Vault for rotated API keys")
			}
		case <-stop:
			return
		}
	}
}

// refresh reads the secret once and applies it when its version is newer.
// An empty key list is ignored so a bad rotation cannot open the API.
func (sr *SecretRefresher) refresh() (bool, error) {
	keys, version, err := sr.source.ServerAPIKeys()
	if err != nil {
		return false, fmt.Errorf("failed to read API keys: %w", err)
	}

	sr.mu.Lock()
	if version <= sr.lastVersion {
		sr.mu.Unlock()
		return false, nil
	}
	sr.lastVersion = version
	sr.mu.Unlock()

	if len(keys) == 0 {
		sr.logger.Warn("Rotated API key secret is empty, keeping current keys", "version", version)
		return false, nil
	}

	sr.apply(keys)
	sr.logger.Info("API keys refreshed from Vault", "version", version, "count", len(keys))
	return true, nil
}

// Status returns the refresher state for the stats endpoint
func (sr *SecretRefresher) Status() map[string]any {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return map[string]any{
		"running":       sr.running,
		"poll_interval": sr.pollInterval.String(),
		"last_version":  sr.lastVersion,
	}
}
