package api

import (
	"net/http"
	"time"

	"github.com/ignite/creative-catalog/internal/pkg/httputil"
)

// HealthStatus represents the health of the dashboard server.
type HealthStatus struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Records   int    `json:"records"`
	Framework bool   `json:"framework"`
}

// HealthCheck reports liveness and catalog size. A catalog that can no
// longer be read makes the server "degraded" but still 200.
//
//	GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := h.refresh(r.Context()); err != nil {
		status = "degraded"
	}
	httputil.OK(w, HealthStatus{
		Status:    status,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Records:   h.catalog.Len(),
		Framework: h.framework != nil,
	})
}
