// Package http exposes the hierarchy service over a chi router.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CohortMap/internal/interfaces/http/handlers"
	"github.com/turtacn/CohortMap/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware of the route tree.
// Nil optional members disable their feature.
type RouterConfig struct {
	// Handlers
	HierarchyHandler *handlers.HierarchyHandler
	HealthHandler    *handlers.HealthHandler

	// Middleware
	Session       middleware.SessionConfig
	CORS          *middleware.CORSConfig
	UploadLimiter middleware.RateLimiter

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter constructs the complete HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.Session(cfg.Session))
	r.Use(middleware.RequestLogging(logger, middleware.DefaultLoggingConfig()))
	r.Use(chimw.Recoverer)
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}

	// --- Probes ---
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}

	// --- API v1 ---
	r.Route("/api/v1", func(api chi.Router) {
		registerHierarchyRoutes(api, cfg.HierarchyHandler, cfg.UploadLimiter)
	})

	return r
}

// registerHierarchyRoutes mounts dataset and view endpoints.
func registerHierarchyRoutes(r chi.Router, h *handlers.HierarchyHandler, limiter middleware.RateLimiter) {
	if h == nil {
		return
	}
	r.Route("/datasets", func(dr chi.Router) {
		if limiter != nil {
			dr.With(middleware.RateLimit(limiter, nil)).Post("/", h.Upload)
		} else {
			dr.Post("/", h.Upload)
		}
		dr.Delete("/", h.Drop)
	})

	r.Route("/hierarchy", func(hr chi.Router) {
		hr.Get("/", h.View)
		hr.Get("/chart", h.Chart)
		hr.Get("/export", h.ExportHierarchy)
	})

	r.Get("/regions", h.Regions)
	r.Get("/top", h.Top)
	r.Get("/top/export", h.ExportTop)
	r.Get("/stats", h.Stats)
}

//Personal.AI order the ending
