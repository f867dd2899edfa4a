// Package handler wires the HTTP surface: checkout, PIX QR lookup,
// plan catalogue, affiliate chain and operational endpoints.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/protecar/checkout-go/internal/domain"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the uniform failure envelope. Details carries the
// typed error context (contributing fields, raw gateway body).
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, errorResponse{
		Success: false,
		Error:   code,
		Message: message,
		Details: details,
	})
}

// handleServiceError maps typed domain errors to HTTP statuses:
// validation errors to 400, missing resources to 404, upstream and
// unknown failures to 500, an open breaker to 503.
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		invalidAmount    *domain.ErrInvalidAmount
		missingSelection *domain.ErrMissingSelection
		badMethod        *domain.ErrUnsupportedPaymentMethod
		cardRequired     *domain.ErrCardRequired
		validation       *domain.ErrValidation
		notFound         *domain.ErrNotFound
		gatewayStep      *domain.ErrGatewayStep
		circuitOpen      *domain.ErrCircuitOpen
		external         *domain.ErrExternalService
	)

	switch {
	case errors.As(err, &invalidAmount):
		writeError(w, http.StatusBadRequest, "invalid_amount", err.Error(), map[string]any{
			"raw":           invalidAmount.Raw,
			"computed":      invalidAmount.Computed,
			"hasPlan":       invalidAmount.HasPlan,
			"servicesTotal": invalidAmount.ServicesTotal,
			"discount":      invalidAmount.Discount,
		})
	case errors.As(err, &missingSelection):
		writeError(w, http.StatusBadRequest, "missing_selection", err.Error(), nil)
	case errors.As(err, &badMethod):
		writeError(w, http.StatusBadRequest, "unsupported_payment_method", err.Error(), map[string]any{
			"method": badMethod.Method,
		})
	case errors.As(err, &cardRequired):
		writeError(w, http.StatusBadRequest, "card_required", err.Error(), map[string]any{
			"missing": cardRequired.Missing,
		})
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.As(err, &gatewayStep):
		logger.Error("gateway step failed",
			zap.String("step", gatewayStep.Step),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "gateway_error", err.Error(), map[string]any{
			"step": gatewayStep.Step,
			"body": json.RawMessage(rawOrQuoted(gatewayStep.Body)),
		})
	case errors.As(err, &circuitOpen):
		writeError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error(), nil)
	case errors.As(err, &external):
		logger.Error("external service failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "external_error", err.Error(), nil)
	default:
		logger.Error("unexpected error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

// rawOrQuoted embeds the upstream body verbatim when it is valid JSON,
// otherwise as a JSON string.
func rawOrQuoted(body string) []byte {
	if json.Valid([]byte(body)) && body != "" {
		return []byte(body)
	}
	quoted, _ := json.Marshal(body)
	return quoted
}
