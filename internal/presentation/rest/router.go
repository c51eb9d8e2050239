package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bibbank/credit-service/pkg/observability"
)

// NewRouter mounts the HTTP routes. reg receives the HTTP request metrics
// and is exposed on /metrics.
func NewRouter(h *Handler, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	metrics := newHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(RequestLogger(logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", h.Liveness)
	r.Get("/readyz", h.Readiness)
	r.Handle("/metrics", observability.MetricsHandler(reg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/preapproval/evaluate", h.EvaluatePreApproval)
		r.Post("/amortization", h.CalculateAmortization)
		r.Get("/approval-level", h.RequiredApprovalLevel)
		r.Get("/applications/track/{radication}", h.TrackApplication)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	return r
}
