// Package fetcher retrieves feed documents and item pages over HTTP with a
// bounded retry policy.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultAttempts   = 3
	DefaultRetryDelay = 5 * time.Second
	DefaultUserAgent  = "Mozilla/5.0 (compatible; OfferComb/1.0)"

	maxBodySize = 10 << 20
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

type Fetcher struct {
	client     *http.Client
	timeout    time.Duration
	attempts   int
	retryDelay time.Duration
	userAgent  string
	limiter    *DomainLimiter
}

type Option func(*Fetcher)

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRetry sets the total number of attempts and the fixed wait between them.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(f *Fetcher) {
		f.attempts = attempts
		f.retryDelay = delay
	}
}

func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		f.userAgent = userAgent
	}
}

// WithRateLimit caps requests per second to any single host. Zero disables it.
func WithRateLimit(rps float64) Option {
	return func(f *Fetcher) {
		if rps > 0 {
			f.limiter = NewDomainLimiter(rps)
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:     &http.Client{},
		timeout:    DefaultTimeout,
		attempts:   DefaultAttempts,
		retryDelay: DefaultRetryDelay,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.attempts < 1 {
		f.attempts = 1
	}
	return f
}

// Fetch returns the raw body of rawURL. Network errors and non-2xx statuses
// are retried with a fixed delay; the last failure is returned once the
// attempts run out.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, err := f.fetch(ctx, rawURL)
	return body, err
}

// FetchPage fetches an HTML page and returns it decoded to UTF-8.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	body, contentType, err := f.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return DecodeHTML(body, contentType)
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, "", fmt.Errorf("invalid URL %q", rawURL)
	}

	var (
		body        []byte
		contentType string
		attempt     int
	)

	operation := func() error {
		attempt++
		var err error
		body, contentType, err = f.do(ctx, parsed)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.retryDelay), uint64(f.attempts-1)),
		ctx,
	)

	notify := func(err error, wait time.Duration) {
		slog.Warn("Fetch attempt failed",
			"url", rawURL,
			"attempt", attempt,
			"max_attempts", f.attempts,
			"retry_in", wait,
			"error", err)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s after %d attempt(s): %w", rawURL, attempt, err)
	}

	return body, contentType, nil
}

func (f *Fetcher) do(ctx context.Context, target *url.URL) ([]byte, string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, target.Host); err != nil {
			return nil, "", backoff.Permanent(err)
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, "", backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", backoff.Permanent(err)
		}
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &StatusError{URL: target.String(), StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
