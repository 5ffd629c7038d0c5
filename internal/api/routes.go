package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// StaticDirs locates the files the dashboard serves directly.
type StaticDirs struct {
	// Dashboard holds index.html and a static/ subdirectory.
	Dashboard string
	// Media is the downloaded creative directory, served under /images/.
	Media string
}

// SetupRoutes configures all routes.
func SetupRoutes(h *Handlers, dirs StaticDirs) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// The dashboard is read-only, so any origin may read it
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", h.ListCatalog)
		r.Get("/catalog/{category}/{name}", h.GetRecord)
		r.Get("/categories", h.GetCategories)
		r.Get("/framework", h.GetFramework)

		r.Route("/media", func(r chi.Router) {
			r.Get("/check", h.CheckMedia)
			r.Get("/proxy", h.ProxyMedia)
		})
	})

	if dirs.Media != "" {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(dirs.Media))))
	}
	if dirs.Dashboard != "" {
		staticDir := filepath.Join(dirs.Dashboard, "static")
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
		r.Get("/", dashboardIndex(dirs.Dashboard))
	}

	return r
}

// dashboardIndex serves the dashboard page.
func dashboardIndex(dir string) http.HandlerFunc {
	indexPath := filepath.Join(dir, "index.html")
	return func(w http.ResponseWriter, req *http.Request) {
		if _, err := os.Stat(indexPath); err != nil {
			http.NotFound(w, req)
			return
		}
		http.ServeFile(w, req, indexPath)
	}
}
