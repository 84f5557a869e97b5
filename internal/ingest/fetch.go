// Package ingest turns job postings and resume text into structured records.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"

	"golang.org/x/time/rate"
)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "Mozilla/5.0 (compatible; resumeforge/1.0)"
	// DefaultFetchTimeout bounds a single page download.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultMaxPageBytes caps how much of a page body is read.
	DefaultMaxPageBytes int64 = 5 << 20
)

// Fetcher downloads job posting pages politely: requests share a token
// bucket and carry a fixed user agent.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	maxBytes  int64
}

// NewFetcher builds a Fetcher from the ingest configuration.
func NewFetcher(cfg config.IngestConfig) *Fetcher {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	maxBytes := cfg.MaxPageBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPageBytes
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// Fetch returns the body of url as a string.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", errors.NewNetworkError(errors.ErrCodeFetchFailed,
			fmt.Sprintf("rate limiter wait for %s", url), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid job URL %q", url), err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.NewNetworkError(errors.ErrCodeFetchFailed,
			fmt.Sprintf("failed to fetch %s", url), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.NewNetworkError(errors.ErrCodeFetchFailed,
			fmt.Sprintf("fetching %s returned HTTP %d", url, resp.StatusCode), nil).
			WithContext("status_code", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", errors.NewNetworkError(errors.ErrCodeFetchFailed,
			fmt.Sprintf("failed to read body of %s", url), err)
	}
	return string(body), nil
}
