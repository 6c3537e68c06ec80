// Package crawler provides a rate-limited web page fetcher that returns
// readable text with markdown-style heading markers, so callers can
// split pages by heading before splitting by size.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/veldtlabs/querra/internal/core/ports/driven"
	"github.com/veldtlabs/querra/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultUserAgent         = "querra/1.0"
	DefaultTimeout           = 10 * time.Second
	DefaultRequestsPerSecond = 4.0
	DefaultBurstSize         = 4

	// maxBodyBytes caps page downloads.
	maxBodyBytes = 10 << 20
)

// Config holds configuration for the fetcher.
type Config struct {
	// UserAgent is sent with every request (default: querra/1.0).
	UserAgent string

	// Timeout is the per-request timeout (default: 10s).
	Timeout time.Duration

	// RequestsPerSecond is the sustained fetch rate (default: 4).
	RequestsPerSecond float64

	// BurstSize is the token bucket burst (default: 4).
	BurstSize int
}

// Fetcher downloads pages over HTTP with token-bucket rate limiting.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// New creates a fetcher with the given configuration.
func New(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultBurstSize
	}

	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		userAgent: cfg.UserAgent,
	}
}

// Fetch downloads a page and returns its readable text. Heading tags
// become markdown heading lines; scripts, styles, and markup are
// stripped.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}

	text := StripHTML(string(body))
	logger.Debug("fetched %s: %d bytes -> %d chars of text", url, len(body), len(text))
	return text, nil
}
