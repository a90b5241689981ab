// Package server exposes dashboard sessions over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/internal/metrics"
	"github.com/spektr-org/needsradar/loader"
	"github.com/spektr-org/needsradar/schema"
	"github.com/spektr-org/needsradar/session"
)

// RouterConfig carries everything the route tree depends on.
type RouterConfig struct {
	Sessions *session.Manager
	Metrics  *metrics.Metrics // optional
	Overlay  *loader.Overlay  // optional
	Scale    engine.OrdinalScale
	Describe schema.DescribeOptions
	Logger   logging.Logger
}

// NewRouter builds the route tree:
//
//	GET    /healthz
//	GET    /metrics
//	GET    /api/v1/options
//	POST   /api/v1/sessions
//	GET    /api/v1/sessions/{id}
//	DELETE /api/v1/sessions/{id}
//	PUT    /api/v1/sessions/{id}/filters
//	POST   /api/v1/sessions/{id}/click
//	POST   /api/v1/sessions/{id}/select
//	POST   /api/v1/sessions/{id}/clear
//	POST   /api/v1/sessions/{id}/reset
//	GET    /api/v1/sessions/{id}/charts/{chart}
//	GET    /api/v1/sessions/{id}/workbook
//	GET    /api/v1/sessions/{id}/regions
func NewRouter(cfg RouterConfig) http.Handler {
	logger := logging.OrDefault(cfg.Logger).Named("http")
	if cfg.Scale.IsZero() {
		cfg.Scale = engine.DefaultOrdinalScale()
	}
	h := &handler{
		sessions: cfg.Sessions,
		overlay:  cfg.Overlay,
		scale:    cfg.Scale,
		describe: cfg.Describe,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogging(logger, cfg.Metrics))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.health)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/options", h.options)

		api.Route("/sessions", func(sr chi.Router) {
			sr.Post("/", h.createSession)

			sr.Route("/{sessionID}", func(item chi.Router) {
				item.Get("/", h.getSession)
				item.Delete("/", h.deleteSession)
				item.Put("/filters", h.setFilters)
				item.Post("/click", h.click)
				item.Post("/select", h.selectRegion)
				item.Post("/clear", h.clear)
				item.Post("/reset", h.reset)
				item.Get("/charts/{chart}", h.chartPNG)
				item.Get("/workbook", h.workbook)
				item.Get("/regions", h.regions)
			})
		})
	})
	return r
}
