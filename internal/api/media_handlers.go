package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/creative-catalog/internal/pkg/httputil"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
)

// maxProxyBytes caps a proxied creative. Larger bodies are cut off.
var maxProxyBytes int64 = 50 << 20

// MediaCheckResponse is the verdict for one URL.
type MediaCheckResponse struct {
	URL        string `json:"url"`
	Working    bool   `json:"working"`
	StatusCode int    `json:"statusCode,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// CheckMedia probes a creative URL.
//
//	GET /api/media/check?url=...
func (h *Handlers) CheckMedia(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		httputil.BadRequest(w, "url is required")
		return
	}
	if _, err := remoteURL(raw); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	res := h.checker.Check(r.Context(), raw)
	httputil.OK(w, MediaCheckResponse{
		URL:        raw,
		Working:    res.Working,
		StatusCode: res.StatusCode,
		Detail:     res.Detail,
	})
}

// ProxyMedia streams a remote creative so the dashboard can display CDN
// media that does not send CORS headers.
//
//	GET /api/media/proxy?url=...
func (h *Handlers) ProxyMedia(w http.ResponseWriter, r *http.Request) {
	target, err := remoteURL(r.URL.Query().Get("url"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		httputil.BadRequest(w, "invalid url")
		return
	}
	resp, err := h.proxy.Do(req)
	if err != nil {
		logger.Warn("api: media proxy failed", "url", target.String(), "error", err)
		httputil.BadGateway(w, "upstream unreachable")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		httputil.BadGateway(w, fmt.Sprintf("upstream HTTP %d", resp.StatusCode))
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	// A declared length past the cap would promise bytes that are never sent
	if resp.ContentLength >= 0 && resp.ContentLength <= maxProxyBytes {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, io.LimitReader(resp.Body, maxProxyBytes)); err != nil {
		logger.Debug("api: media proxy copy interrupted", "url", target.String(), "error", err)
	}
}

// remoteURL accepts absolute http and https URLs only.
func remoteURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("only http and https urls are allowed")
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url has no host")
	}
	return u, nil
}
