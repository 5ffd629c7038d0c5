package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ignite/creative-catalog/internal/pkg/httpretry"
)

const (
	defaultCheckTimeout     = 5 * time.Second
	defaultCheckConcurrency = 10
)

// Checker probes creative URLs without downloading them.
type Checker struct {
	client        httpretry.HTTPDoer
	timeout       time.Duration
	batchSize     int
	fallbackToGet bool
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithCheckTimeout bounds each probe.
func WithCheckTimeout(d time.Duration) CheckerOption {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBatchSize sets how many probes run concurrently.
func WithBatchSize(n int) CheckerOption {
	return func(c *Checker) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithGetFallback retries with a one-byte ranged GET when a host refuses
// HEAD (403, 405 or 501).
func WithGetFallback(enabled bool) CheckerOption {
	return func(c *Checker) { c.fallbackToGet = enabled }
}

// NewChecker creates a Checker. A nil client selects a non-retrying
// client that does not follow redirects, so 3xx counts as reachable.
func NewChecker(client httpretry.HTTPDoer, opts ...CheckerOption) *Checker {
	if client == nil {
		client = httpretry.NewRetryClient(httpretry.NewNoRedirectClient(), 0)
	}
	c := &Checker{
		client:    client,
		timeout:   defaultCheckTimeout,
		batchSize: defaultCheckConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check reports whether rawURL answers with a 2xx or 3xx status. An empty
// URL is broken without a network call.
func (c *Checker) Check(ctx context.Context, rawURL string) Availability {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Broken("empty url")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	code, err := c.probe(ctx, http.MethodHead, rawURL)
	if err == nil && c.fallbackToGet && headRefused(code) {
		code, err = c.probe(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		reason := describeError(err)
		if reason != "timeout" {
			reason = "network error: " + reason
		}
		return Broken(reason)
	}
	if code >= 200 && code < 400 {
		return Availability{Working: true, StatusCode: code}
	}
	return Availability{StatusCode: code, Detail: fmt.Sprintf("HTTP %d", code)}
}

func (c *Checker) probe(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("invalid url: %w", err)
	}
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	resp.Body.Close()
	return resp.StatusCode, nil
}

func headRefused(code int) bool {
	return code == http.StatusMethodNotAllowed || code == http.StatusForbidden || code == http.StatusNotImplemented
}

// CheckAll probes urls in fixed batches: each batch fans out, then joins
// before the next starts. Results are returned in input order. onBatch,
// when set, is called after each batch with the number of URLs done.
func (c *Checker) CheckAll(ctx context.Context, urls []string, onBatch func(done int)) []Availability {
	results := make([]Availability, len(urls))

	for start := 0; start < len(urls); start += c.batchSize {
		end := start + c.batchSize
		if end > len(urls) {
			end = len(urls)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = c.Check(ctx, urls[i])
			}(i)
		}
		wg.Wait()

		if onBatch != nil {
			onBatch(end)
		}
	}
	return results
}
