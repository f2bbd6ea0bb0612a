// Package httpapi assembles the service router: platform middleware, health
// and metrics endpoints, and the versioned filing API.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"whereabouts/internal/platform/metrics"
	"whereabouts/internal/platform/middleware"
	"whereabouts/internal/schedule/handler"
)

// NewRouter wires the full HTTP surface.
func NewRouter(scheduleHandler *handler.Handler, logger *slog.Logger, platformMetrics *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(platformMetrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		scheduleHandler.Register(r)
	})

	return r
}
