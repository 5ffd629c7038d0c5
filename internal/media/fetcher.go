package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ignite/creative-catalog/internal/pkg/httpretry"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultMaxRedirects = 5
	partSuffix          = ".part"
)

// Fetcher downloads creatives to local files. Redirects are followed by
// the fetcher itself so the hop count is bounded regardless of transport.
type Fetcher struct {
	client       httpretry.HTTPDoer
	timeout      time.Duration
	maxRedirects int
	userAgent    string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout bounds each download, redirects and body included.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxRedirects caps the number of redirect hops.
func WithMaxRedirects(n int) FetcherOption {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRedirects = n
		}
	}
}

// WithUserAgent sets the User-Agent header. Some CDNs reject Go's default.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) { f.userAgent = ua }
}

// NewFetcher creates a Fetcher. A nil client selects a retrying client
// over a transport that never follows redirects on its own.
func NewFetcher(client httpretry.HTTPDoer, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = httpretry.NewRetryClient(httpretry.NewNoRedirectClient(), 2)
	}
	f := &Fetcher{
		client:       client,
		timeout:      defaultFetchTimeout,
		maxRedirects: defaultMaxRedirects,
		userAgent:    "creative-catalog/1.0",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads rawURL to dest. An existing dest is never re-downloaded
// and no network call is made for it. Failed downloads leave nothing at
// dest; only local write failures carry ErrLocalWrite.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dest string) DownloadOutcome {
	if _, err := os.Stat(dest); err == nil {
		return Skipped("already exists")
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Skipped("no url")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return Failed(describeError(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Failed(fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	return f.save(resp.Body, dest)
}

var errTooManyRedirects = errors.New("too many redirects")

// get issues GETs, following 3xx Location headers up to maxRedirects.
// Relative locations resolve against the current URL.
func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	current := rawURL
	for hops := 0; ; hops++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			return nil, fmt.Errorf("invalid url: %w", err)
		}
		if f.userAgent != "" {
			req.Header.Set("User-Agent", f.userAgent)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		if !isRedirect(resp.StatusCode) {
			return resp, nil
		}

		loc := resp.Header.Get("Location")
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		if loc == "" {
			return nil, fmt.Errorf("HTTP %d without Location", resp.StatusCode)
		}
		if hops >= f.maxRedirects {
			return nil, errTooManyRedirects
		}
		next, err := req.URL.Parse(loc)
		if err != nil {
			return nil, fmt.Errorf("bad redirect location %q: %w", loc, err)
		}
		logger.Debug("media: following redirect", "from", current, "to", next.String())
		current = next.String()
	}
}

// save streams body to dest via a sibling .part file.
func (f *Fetcher) save(body io.Reader, dest string) DownloadOutcome {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return Failed("create directory", fmt.Errorf("%w: %v", ErrLocalWrite, err))
	}

	tmp := dest + partSuffix
	out, err := os.Create(tmp)
	if err != nil {
		return Failed("create file", fmt.Errorf("%w: %v", ErrLocalWrite, err))
	}

	w := &writeTracker{w: out}
	_, copyErr := io.Copy(w, body)
	closeErr := out.Close()

	switch {
	case w.err != nil:
		os.Remove(tmp)
		return Failed("write file", fmt.Errorf("%w: %v", ErrLocalWrite, w.err))
	case copyErr != nil:
		os.Remove(tmp)
		return Failed(describeError(copyErr), copyErr)
	case closeErr != nil:
		os.Remove(tmp)
		return Failed("close file", fmt.Errorf("%w: %v", ErrLocalWrite, closeErr))
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return Failed("rename file", fmt.Errorf("%w: %v", ErrLocalWrite, err))
	}
	return Success(dest)
}

// writeTracker records write errors so they can be told apart from read
// errors on the response body.
type writeTracker struct {
	w   io.Writer
	err error
}

func (t *writeTracker) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// describeError turns transport errors into short report reasons.
func describeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	if errors.Is(err, errTooManyRedirects) {
		return errTooManyRedirects.Error()
	}
	return err.Error()
}
