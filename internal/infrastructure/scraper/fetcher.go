package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"newsbytes/internal/config"
	"newsbytes/internal/domain"
	"newsbytes/internal/ports"
)

// maxBodyBytes caps how much of a page is read; anything past it is ignored.
const maxBodyBytes = 5 << 20

// Fetcher downloads article pages while presenting itself as a regular
// browser. Blocked and transient responses are retried with exponential
// backoff before the URL is reported as failed.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxAttempts int
	retryBase   time.Duration
	logger      *slog.Logger
}

var _ ports.PageFetcher = (*Fetcher)(nil)

// NewFetcher builds a fetcher from scraper settings.
func NewFetcher(cfg config.ScraperConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Fetcher{
		client:      &http.Client{Timeout: cfg.Timeout()},
		userAgent:   cfg.UserAgent,
		maxAttempts: maxAttempts,
		retryBase:   time.Second,
		logger:      logger,
	}
}

// Fetch retrieves the page at pageURL and returns its decoded HTML.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidURL, pageURL)
	}

	var lastErr error
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := f.retryBase * time.Duration(1<<attempt)
			f.logger.Info("retrying fetch", "url", pageURL, "attempt", attempt+1, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := f.fetchOnce(ctx, pageURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) {
			return nil, err
		}
		f.logger.Warn("fetch attempt failed", "url", pageURL, "attempt", attempt+1, "error", err)
	}

	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidURL, pageURL)
	}
	f.setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(pageURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("fetch %s: %w", pageURL, &domain.BlockedError{Status: resp.StatusCode})
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("fetch %s: %w", pageURL, &domain.StatusError{Status: resp.StatusCode})
	}

	limited := io.LimitReader(resp.Body, maxBodyBytes)
	reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		// Undecodable charset declarations are rare; take the bytes as-is.
		reader = limited
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, classifyTransportError(pageURL, err)
	}
	return body, nil
}

// setBrowserHeaders mimics a desktop Chrome request. Accept-Encoding is left
// to the transport so gzip responses are decompressed transparently.
func (f *Fetcher) setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "max-age=0")
}

func classifyTransportError(pageURL string, err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("fetch %s: %w: %w", pageURL, domain.ErrUnreachable, err)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("fetch %s: %w", pageURL, domain.ErrFetchTimeout)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("fetch %s: %w: %w", pageURL, domain.ErrUnreachable, err)
	}

	return fmt.Errorf("fetch %s: %w", pageURL, err)
}

// retryable reports whether another attempt could plausibly succeed.
// DNS failures and malformed URLs fail fast; blocked responses, server
// errors and timeouts get the remaining attempts.
func retryable(err error) bool {
	if errors.Is(err, domain.ErrInvalidURL) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false
	}

	var status *domain.StatusError
	if errors.As(err, &status) {
		return status.Status >= 500
	}

	return true
}
