package handler

import (
	"net/http"

	"github.com/protecar/checkout-go/internal/infra/observability"
	"github.com/protecar/checkout-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the HTTP surface with the standard middleware stack.
func NewRouter(svc *service.CheckoutService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	r.Get("/healthz", healthzHandler(svc))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/checkout", checkoutHandler(svc, logger))
		r.Get("/payments/{paymentId}/pix", pixQrHandler(svc, logger))
		r.Get("/plans", plansHandler(svc, logger))
		r.Get("/affiliates/{affiliateId}", affiliateHandler(svc, logger))
	})

	return r
}

// healthzHandler probes dependencies; a degraded report answers 503 so
// orchestrators stop routing to this instance.
func healthzHandler(svc *service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := svc.Health(r.Context())
		status := http.StatusOK
		if health.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, health)
	}
}

// readyzHandler reports process liveness without touching dependencies.
func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
