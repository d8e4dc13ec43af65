// Package httptransport exposes the auth orchestrator over HTTP for the
// desktop shell and for operational tooling. Handlers stay thin: decode,
// delegate, encode. All auth semantics live in the service.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"passage/internal/platform/middleware"
)

// NewRouter wires the public endpoints with the standard middleware chain.
func NewRouter(auth *AuthHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Device)
	r.Use(middleware.Timeout(30 * time.Second))

	auth.Register(r)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
