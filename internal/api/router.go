package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Weigh/internal/config"
	"github.com/MikeSquared-Agency/Weigh/internal/hermes"
	"github.com/MikeSquared-Agency/Weigh/internal/metrics"
	"github.com/MikeSquared-Agency/Weigh/internal/store"
)

// NewRouter builds the public API. The decision and admin routes are only
// mounted when a store is configured; evaluation works without one.
func NewRouter(s store.Store, h hermes.Client, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(MetricsMiddleware(m))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMinute))

	evaluate := NewEvaluateHandler(m, cfg.Evaluation, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/evaluate", evaluate.Evaluate)
		r.Post("/evaluate/batch", evaluate.Batch)

		if s == nil {
			return
		}

		decisions := NewDecisionsHandler(s, h, evaluate, logger)
		admin := NewAdminHandler(s, cfg.Evaluation)

		r.Post("/decisions", decisions.Create)
		r.Get("/decisions", decisions.List)
		r.Route("/decisions/{id}", func(r chi.Router) {
			r.Get("/", decisions.Get)
			r.Delete("/", decisions.Delete)
			r.Post("/criteria", decisions.AddCriterion)
			r.Patch("/criteria/{criterion_id}", decisions.RenameCriterion)
			r.Delete("/criteria/{criterion_id}", decisions.RemoveCriterion)
			r.Put("/selection", decisions.SetSelection)
			r.Put("/comparisons", decisions.SetComparisons)
			r.Post("/evaluate", decisions.Evaluate)
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/admin/stats", admin.Stats)
		})
	})

	return r
}

// NewMetricsRouter serves /health and /metrics. The health check pings the
// store when one is configured; a store failure degrades the service while a
// lost hermes connection is only reported, since events are optional.
func NewMetricsRouter(s store.Store, h hermes.Client, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}

		if s != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := s.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["database"] = err.Error()
			}
		}
		if h != nil {
			body["hermes"] = "connected"
			if !h.Connected() {
				body["hermes"] = "disconnected"
			}
		}
		writeJSON(w, status, body)
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}
