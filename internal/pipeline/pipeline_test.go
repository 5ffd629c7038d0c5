package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignite/creative-catalog/internal/domain"
	"github.com/ignite/creative-catalog/internal/storage"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 10), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newStore(t *testing.T) *storage.CatalogStore {
	t.Helper()
	s, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "catalog.json"))
	require.NoError(t, err)
	return s
}

func reopen(t *testing.T, s *storage.CatalogStore) *storage.CatalogStore {
	t.Helper()
	again, err := storage.Open(context.Background(), s.Path())
	require.NoError(t, err)
	return again
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// mediaServer serves a PNG at /*.png, 404 at /missing*, and counts hits.
func mediaServer(t *testing.T, body []byte, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		if filepath.Ext(r.URL.Path) == ".png" {
			w.Header().Set("Content-Type", "image/png")
			w.Write(body)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func mustGet(t *testing.T, s *storage.CatalogStore, key string) domain.AdRecord {
	t.Helper()
	rec, ok := s.Get(key)
	require.True(t, ok, "record %s", key)
	return rec
}
