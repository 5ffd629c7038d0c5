package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/creative-catalog/internal/domain"
	"github.com/ignite/creative-catalog/internal/storage"
	"github.com/ignite/creative-catalog/internal/traits"
)

type testEnv struct {
	store     *storage.CatalogStore
	handlers  *Handlers
	router    http.Handler
	dashboard string
	media     string
}

func setupTestEnv(t *testing.T, fw *traits.Framework) *testEnv {
	t.Helper()
	root := t.TempDir()

	store, err := storage.Open(context.Background(), filepath.Join(root, "catalog.json"))
	require.NoError(t, err)
	store.Merge(domain.AdRecord{Name: "Ad One", Category: "Roofing", SourceURL: "https://cdn.example.com/1.jpg", MediaStatus: domain.MediaWorking})
	store.Merge(domain.AdRecord{Name: "Ad Two", Category: "Roofing", MediaStatus: domain.MediaMissing})
	store.Merge(domain.AdRecord{Name: "Sunny", Category: "Solar", Traits: map[string]string{"Color Scheme": "Bright"}})
	require.NoError(t, store.Save(context.Background()))

	env := &testEnv{
		store:     store,
		dashboard: filepath.Join(root, "public"),
		media:     filepath.Join(root, "images"),
	}
	require.NoError(t, os.MkdirAll(filepath.Join(env.dashboard, "static"), 0755))
	require.NoError(t, os.MkdirAll(env.media, 0755))

	env.handlers = NewHandlers(store, fw, nil)
	env.router = SetupRoutes(env.handlers, StaticDirs{Dashboard: env.dashboard, Media: env.media})
	return env
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type listBody struct {
	Items []domain.AdRecord `json:"items"`
	Count int               `json:"count"`
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) listBody {
	t.Helper()
	var body listBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListCatalog(t *testing.T) {
	env := setupTestEnv(t, nil)

	tests := []struct {
		query string
		names []string
	}{
		{"", []string{"Ad One", "Ad Two", "Sunny"}},
		{"?category=roofing", []string{"Ad One", "Ad Two"}},
		{"?status=missing", []string{"Ad Two"}},
		{"?analyzed=true", []string{"Sunny"}},
		{"?analyzed=false&category=Roofing", []string{"Ad One", "Ad Two"}},
		{"?category=Windows", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := env.get(t, "/api/catalog"+tt.query)
			require.Equal(t, http.StatusOK, w.Code)

			body := decodeList(t, w)
			names := []string{}
			for _, rec := range body.Items {
				names = append(names, rec.Name)
			}
			assert.Equal(t, tt.names, names)
			assert.Equal(t, len(tt.names), body.Count)
		})
	}
}

func TestListCatalog_SeesExternalSaves(t *testing.T) {
	env := setupTestEnv(t, nil)

	other, err := storage.Open(context.Background(), env.store.Path())
	require.NoError(t, err)
	other.Merge(domain.AdRecord{Name: "Late Arrival", Category: "Solar"})
	require.NoError(t, other.Save(context.Background()))

	body := decodeList(t, env.get(t, "/api/catalog?category=Solar"))
	assert.Equal(t, 2, body.Count)
}

func TestGetRecord(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.get(t, "/api/catalog/Roofing/Ad%20One")
	require.Equal(t, http.StatusOK, w.Code)

	var rec domain.AdRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "Ad One", rec.Name)
	assert.Equal(t, "https://cdn.example.com/1.jpg", rec.SourceURL)

	w = env.get(t, "/api/catalog/Roofing/Nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "record not found")
}

func TestGetCategories(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.get(t, "/api/categories")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[{"name":"Roofing","count":2},{"name":"Solar","count":1}],"count":2}`, w.Body.String())
}

func TestGetFramework(t *testing.T) {
	env := setupTestEnv(t, nil)
	assert.Equal(t, http.StatusNotFound, env.get(t, "/api/framework").Code)

	fw, err := traits.ParseFramework([]byte(`{
		"People": {"kind": "selectable", "options": ["Yes", "No"]},
		"Color Scheme": {"kind": "selectable", "options": ["Bright"]}
	}`))
	require.NoError(t, err)
	env = setupTestEnv(t, fw)

	w := env.get(t, "/api/framework")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Less(t, strings.Index(body, `"People"`), strings.Index(body, `"Color Scheme"`))
}

func TestHealthCheck(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.get(t, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var health HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 3, health.Records)
	assert.False(t, health.Framework)
}

func TestStaticFiles(t *testing.T) {
	env := setupTestEnv(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(env.dashboard, "index.html"), []byte("<h1>Creatives</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(env.dashboard, "static", "app.js"), []byte("console.log(1)"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(env.media, "Roofing_Ad_One.jpg"), []byte{0xFF, 0xD8}, 0644))

	w := env.get(t, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Creatives")

	w = env.get(t, "/static/app.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())

	w = env.get(t, "/images/Roofing_Ad_One.jpg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte{0xFF, 0xD8}, w.Body.Bytes())
}

func TestCORSHeader(t *testing.T) {
	env := setupTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
