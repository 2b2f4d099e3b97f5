// Package api wires the airglance HTTP API: middleware, routes and handlers.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/airglance/airglance/internal/api/handler"
	"github.com/airglance/airglance/internal/api/middleware"
	"github.com/airglance/airglance/internal/api/models"
	"github.com/airglance/airglance/internal/api/response"
	"github.com/airglance/airglance/internal/location"
	"github.com/airglance/airglance/internal/provider/resilience"
)

// RouterConfig holds the dependencies of the HTTP API. Only Index is
// required; missing optional parts degrade the matching endpoints.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger

	// Metrics records HTTP metrics when set.
	Metrics *middleware.Metrics

	// Index backs city search, nearest lookups and readiness.
	Index *location.Index

	// Dashboard builds dashboards. When nil the dashboard route answers 503.
	Dashboard handler.DashboardBuilder

	// Registry reports provider circuit breaker state on /v1/ops/status.
	Registry *resilience.Registry

	// Database is pinged by readiness when the city source is Postgres.
	Database handler.Pinger

	// Refresh reports background refresh statistics.
	Refresh handler.RefreshReporter

	// RequireTLS rejects plain-HTTP requests forwarded by a load balancer.
	RequireTLS bool

	// CORSOrigins are the browser origins allowed to call the API.
	CORSOrigins []string
}

// NewRouter builds the API router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Order matters: the logger tags lines with the request and trace IDs,
	// and recovery logs through the request logger.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Problem(w, r, models.KindNotFound, "no route matches "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	ops := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Locations: cfg.Index,
		Database:  cfg.Database,
		Registry:  cfg.Registry,
		Refresh:   cfg.Refresh,
	})
	locations := handler.NewLocationHandler(cfg.Index)
	classify := handler.NewClassifyHandler()
	metadata := handler.NewMetadataHandler()

	dashboard := func(w http.ResponseWriter, r *http.Request) {
		response.Problem(w, r, models.KindUnavailable, "dashboard is not configured")
	}
	if cfg.Dashboard != nil {
		dashboard = handler.NewDashboardHandler(cfg.Dashboard).GetDashboard
	}

	standard := middleware.StandardRateLimit.Handler()

	r.Route("/v1", func(r chi.Router) {
		// Probes are never rate limited.
		r.Get("/ops/health", ops.HealthCheck)
		r.Get("/ops/ready", ops.ReadinessCheck)
		r.With(standard).Get("/ops/status", ops.SystemStatus)

		r.With(middleware.DashboardRateLimit.Handler()).Get("/dashboard", dashboard)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SearchRateLimit.Handler())
			r.Get("/locations/search", locations.Search)
			r.Get("/locations/nearest", locations.Nearest)
		})

		r.Group(func(r chi.Router) {
			r.Use(standard)
			r.Get("/classify", classify.Classify)
			r.Get("/metadata/metrics", metadata.ListMetricTables)
		})
	})

	return r
}
