package media

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/ignite/creative-catalog/internal/pkg/httpretry"
)

// countingDoer counts requests and delegates to inner. A nil inner fails
// every request, for asserting that no network call happens.
type countingDoer struct {
	inner httpretry.HTTPDoer
	calls int32
}

func (c *countingDoer) Do(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.inner == nil {
		return nil, errors.New("unexpected network call")
	}
	return c.inner.Do(req)
}

func (c *countingDoer) Calls() int {
	return int(atomic.LoadInt32(&c.calls))
}

func newCountingDoer() *countingDoer {
	return &countingDoer{inner: httpretry.NewNoRedirectClient()}
}
