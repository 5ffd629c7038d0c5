// Package httpretry retries creative downloads and URL checks against CDNs
// that throttle or briefly fail.
package httpretry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/ignite/creative-catalog/internal/pkg/logger"
)

// HTTPDoer sends one request. *http.Client and *RetryClient both qualify,
// so the media fetcher and checker accept either.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryClient resends a request after a throttled (429) or 5xx gateway
// reply, or a transport error, waiting a jittered, doubling delay between
// attempts.
type RetryClient struct {
	client     HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Option configures a RetryClient.
type Option func(*RetryClient)

// WithBackoff sets the first retry delay and the ceiling it doubles up to.
func WithBackoff(base, max time.Duration) Option {
	return func(rc *RetryClient) {
		rc.baseDelay = base
		rc.maxDelay = max
	}
}

// NewRetryClient wraps client, or a plain http.Client with a 30s timeout
// when client is nil. maxRetries counts resends after the first attempt:
// 0 sends once, a negative value means 3.
func NewRetryClient(client HTTPDoer, maxRetries int, opts ...Option) *RetryClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries < 0 {
		maxRetries = 3
	}
	rc := &RetryClient{
		client:     client,
		maxRetries: maxRetries,
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// NewNoRedirectClient returns an http.Client that hands 3xx responses back
// to the caller, which follows them itself so every hop can be counted
// and checked. Timeouts come from the request context.
func NewNoRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Do sends req, resending it while the reply is retryable and attempts
// remain. Other statuses, 404 included, come back on the first try. When
// attempts run out the last response is returned untouched so the caller
// can report its status. A canceled context stops the loop at once.
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	var lastErr error
	var wait time.Duration

	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("httpretry: resending",
				"attempt", attempt, "of", rc.maxRetries,
				"method", req.Method, "host", req.URL.Host, "after", wait)
			if err := sleep(ctx, wait); err != nil {
				return nil, firstErr(lastErr, err)
			}
			if err := rewind(req); err != nil {
				return nil, err
			}
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			wait = rc.backoff(attempt + 1)
			continue
		}
		if !retryable(resp.StatusCode) || attempt == rc.maxRetries {
			return resp, nil
		}

		wait = rc.backoff(attempt + 1)
		if hinted, ok := retryAfter(resp); ok {
			wait = min(hinted, rc.maxDelay)
		}
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: %s answered %d", req.URL.Host, resp.StatusCode)
	}

	if lastErr == nil {
		lastErr = errors.New("httpretry: request never sent")
	}
	return nil, lastErr
}

// backoff picks a delay for the given resend: uniform in [0, base*2^(n-1)],
// capped at maxDelay, and never below 100ms unless maxDelay is lower.
func (rc *RetryClient) backoff(n int) time.Duration {
	ceiling := rc.maxDelay
	if shift := n - 1; shift < 31 {
		if d := rc.baseDelay << shift; d > 0 && d < ceiling {
			ceiling = d
		}
	}
	d := time.Duration(rand.Int63n(int64(ceiling) + 1))
	return max(d, min(100*time.Millisecond, rc.maxDelay))
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// rewind restores the body of a request about to be resent.
func rewind(req *http.Request) error {
	if req.GetBody == nil {
		return nil
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("httpretry: reset body: %w", err)
	}
	req.Body = body
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// retryable reports whether a status is worth another attempt: rate
// limiting and the 5xx codes CDNs return while an origin is flapping.
func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
