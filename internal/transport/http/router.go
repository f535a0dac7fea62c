// Package httptransport assembles the HTTP surface: the shared middleware
// chain, every module's routes, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pejotadev/fidlink/internal/platform/metrics"
	"github.com/pejotadev/fidlink/internal/platform/middleware"
)

// ModuleHandler is implemented by each module's HTTP handler.
type ModuleHandler interface {
	Register(r chi.Router)
}

// NewRouter wires the middleware chain and mounts every module handler.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, handlers ...ModuleHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))

	for _, h := range handlers {
		h.Register(r)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
