// Package api serves the internal ops/status HTTP API: health checks and a
// read-only view of the tracked matches and their alert records.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/kxbet/matchwatch/internal/cache"
	"github.com/kxbet/matchwatch/internal/config"
	"github.com/kxbet/matchwatch/internal/store"
)

// NewRouter creates and configures the Chi router with all middleware and
// routes.
func NewRouter(st store.Store, listings *cache.Cache, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// --- Handler dependencies ---
	h := &Handler{store: st, listings: listings, cfg: cfg}

	// --- Routes ---
	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/store", h.HealthCheckStore)
		r.Get("/cache", h.HealthCheckCache)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tracked", h.GetTracked)
		r.Get("/matches/{matchID}", h.GetMatchRecord)
	})

	return r
}
