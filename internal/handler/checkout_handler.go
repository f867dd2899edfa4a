package handler

import (
	"encoding/json"
	"net/http"

	"github.com/protecar/checkout-go/internal/domain"
	"github.com/protecar/checkout-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// checkoutHandler handles POST /v1/checkout.
func checkoutHandler(svc *service.CheckoutService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
			return
		}

		result, err := svc.ProcessCheckout(r.Context(), &req)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// pixQrHandler handles GET /v1/payments/{paymentId}/pix.
func pixQrHandler(svc *service.CheckoutService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID := chi.URLParam(r, "paymentId")
		if paymentID == "" {
			writeError(w, http.StatusBadRequest, "validation_error", "paymentId is required", nil)
			return
		}

		qr, err := svc.FetchPixQr(r.Context(), paymentID)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, qr)
	}
}

// plansHandler handles GET /v1/plans.
func plansHandler(svc *service.CheckoutService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := svc.ListPlans(r.Context())
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
	}
}

// affiliateHandler handles GET /v1/affiliates/{affiliateId}, returning
// the affiliate with its resolved referrer.
func affiliateHandler(svc *service.CheckoutService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		affiliateID := chi.URLParam(r, "affiliateId")
		if affiliateID == "" {
			writeError(w, http.StatusBadRequest, "validation_error", "affiliateId is required", nil)
			return
		}

		chain, err := svc.GetAffiliateChain(r.Context(), affiliateID)
		if err != nil {
			handleServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, chain)
	}
}
