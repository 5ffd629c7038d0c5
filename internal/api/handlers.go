package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/creative-catalog/internal/domain"
	"github.com/ignite/creative-catalog/internal/media"
	"github.com/ignite/creative-catalog/internal/pkg/httpretry"
	"github.com/ignite/creative-catalog/internal/pkg/httputil"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
	"github.com/ignite/creative-catalog/internal/traits"
)

// Catalog is the read side of the catalog store the dashboard needs.
// *storage.CatalogStore satisfies it.
type Catalog interface {
	Records() []domain.AdRecord
	Get(key string) (domain.AdRecord, bool)
	Len() int
	Reload(ctx context.Context) (bool, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	catalog   Catalog
	framework *traits.Framework
	checker   *media.Checker
	proxy     httpretry.HTTPDoer
	startTime time.Time
}

// NewHandlers creates a new Handlers instance. framework may be nil when no
// framework file exists yet.
func NewHandlers(catalog Catalog, framework *traits.Framework, checker *media.Checker) *Handlers {
	if checker == nil {
		checker = media.NewChecker(nil)
	}
	return &Handlers{
		catalog:   catalog,
		framework: framework,
		checker:   checker,
		proxy:     httpretry.NewRetryClient(&http.Client{Timeout: 30 * time.Second}, 1),
		startTime: time.Now(),
	}
}

// SetProxyClient replaces the client used by the media proxy.
func (h *Handlers) SetProxyClient(client httpretry.HTTPDoer) {
	h.proxy = client
}

// refresh picks up catalog writes made by batch runs since the last request.
func (h *Handlers) refresh(ctx context.Context) error {
	_, err := h.catalog.Reload(ctx)
	return err
}

// ListCatalog returns catalog records, optionally filtered.
//
//	GET /api/catalog?category=Roofing&status=broken&analyzed=false
func (h *Handlers) ListCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.refresh(r.Context()); err != nil {
		httputil.InternalError(w, err)
		return
	}

	q := r.URL.Query()
	category := q.Get("category")
	status := q.Get("status")
	analyzed := q.Get("analyzed")

	records := make([]domain.AdRecord, 0, h.catalog.Len())
	for _, rec := range h.catalog.Records() {
		if category != "" && !strings.EqualFold(rec.Category, category) {
			continue
		}
		if status != "" && string(rec.MediaStatus) != status {
			continue
		}
		if analyzed == "true" && !rec.HasTraits() {
			continue
		}
		if analyzed == "false" && rec.HasTraits() {
			continue
		}
		records = append(records, rec)
	}
	httputil.List(w, records, len(records))
}

// noCategory stands in for an empty category in record URLs.
const noCategory = "-"

// GetRecord returns one record.
//
//	GET /api/catalog/{category}/{name}
func (h *Handlers) GetRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.refresh(r.Context()); err != nil {
		httputil.InternalError(w, err)
		return
	}

	category := pathParam(r, "category")
	if category == noCategory {
		category = ""
	}
	name := pathParam(r, "name")

	rec, ok := h.catalog.Get(domain.RecordKey(category, name))
	if !ok {
		httputil.NotFound(w, "record not found")
		return
	}
	httputil.OK(w, rec)
}

// GetFramework returns the trait framework in category order.
//
//	GET /api/framework
func (h *Handlers) GetFramework(w http.ResponseWriter, r *http.Request) {
	if h.framework == nil {
		httputil.NotFound(w, "framework not loaded")
		return
	}
	httputil.OK(w, h.framework)
}

// GetCategories lists the distinct record categories with their counts.
//
//	GET /api/categories
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	if err := h.refresh(r.Context()); err != nil {
		httputil.InternalError(w, err)
		return
	}

	type categoryCount struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	out := []categoryCount{}
	index := make(map[string]int)
	for _, rec := range h.catalog.Records() {
		i, ok := index[rec.Category]
		if !ok {
			i = len(out)
			index[rec.Category] = i
			out = append(out, categoryCount{Name: rec.Category})
		}
		out[i].Count++
	}
	httputil.List(w, out, len(out))
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	logger.Debug("api: undecodable path parameter", "param", name)
	return raw
}
