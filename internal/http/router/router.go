package router

import (
	"encoding/json"
	"net/http"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/auth"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/config"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/database"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/http/handler"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Catalog   *handler.CatalogHandler
	Customer  *handler.CustomerHandler
	Sale      *handler.SaleHandler
	Dashboard *handler.DashboardHandler
	Pipeline  *handler.PipelineHandler
	Auth      *handler.AuthHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	httpMetrics    *middleware.HTTPMetrics
	gatherer       prometheus.Gatherer
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	httpMetrics *middleware.HTTPMetrics,
	gatherer prometheus.Gatherer,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		httpMetrics:    httpMetrics,
		gatherer:       gatherer,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)
	if rt.httpMetrics != nil {
		r.Use(rt.httpMetrics.Instrument)
	}

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness probe with pool stats
	r.Get("/health/db", rt.databaseHealth)

	r.Handle("/metrics", promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))

	h := rt.handlers
	r.Route("/api/v1", func(r chi.Router) {
		// Public read routes
		r.Get("/segments", h.Catalog.ListSegments)
		r.Get("/vehicles", h.Catalog.ListVehicles)
		r.Get("/customers", h.Customer.List)
		r.Get("/customers/{id}", h.Customer.GetByID)
		r.Get("/sales", h.Sale.List)
		r.Get("/dashboard/stats", h.Dashboard.GetStats)
		r.Get("/pipeline/status", h.Pipeline.Status)
		r.Post("/auth/login", h.Auth.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			r.Get("/auth/me", h.Auth.Me)
			r.Post("/customers/{id}/classify", h.Customer.Classify)
			r.Patch("/customers/{id}/status", h.Customer.UpdateStatus)

			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Post("/pipeline/run", h.Pipeline.Run)
				r.Put("/pipeline/sources/{kind}", h.Pipeline.UploadSource)
			})
		})
	})

	return r
}

func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	stats, err := database.HealthCheckWithStats(rt.db)
	if err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"driver":  rt.cfg.Database.Driver,
		"stats":   stats,
	})
}
