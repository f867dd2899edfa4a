package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the checkout service.
// Validation errors map to HTTP 400; gateway step failures to 500. The
// handler layer owns that mapping.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a generic validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInvalidAmount indicates the checkout finalValue did not parse to a
// positive number. The contributing fields are kept for caller debugging.
type ErrInvalidAmount struct {
	Raw           string
	Computed      float64
	HasPlan       bool
	ServicesTotal float64
	Discount      float64
}

func (e *ErrInvalidAmount) Error() string {
	return fmt.Sprintf("invalid checkout amount %q (computed=%.2f plan=%t services=%.2f discount=%.2f)",
		e.Raw, e.Computed, e.HasPlan, e.ServicesTotal, e.Discount)
}

// ErrMissingSelection indicates the request carried neither a plan nor
// any optional service.
type ErrMissingSelection struct{}

func (e *ErrMissingSelection) Error() string {
	return "checkout requires a plan or at least one selected service"
}

// ErrUnsupportedPaymentMethod indicates an unknown billing type.
type ErrUnsupportedPaymentMethod struct {
	Method string
}

func (e *ErrUnsupportedPaymentMethod) Error() string {
	return fmt.Sprintf("unsupported payment method: %q", e.Method)
}

// ErrCardRequired indicates a CREDIT_CARD checkout without a structurally
// complete creditCard block.
type ErrCardRequired struct {
	Missing []string
}

func (e *ErrCardRequired) Error() string {
	if len(e.Missing) == 0 {
		return "creditCard block is required for CREDIT_CARD checkouts"
	}
	return fmt.Sprintf("creditCard block incomplete: missing %s", strings.Join(e.Missing, ", "))
}

// Gateway pipeline steps, used by ErrGatewayStep and metrics labels.
const (
	GatewayStepCustomer     = "customer"
	GatewayStepTokenize     = "tokenize"
	GatewayStepCharge       = "charge"
	GatewayStepSubscription = "subscription"
	GatewayStepPixQr        = "pix_qr"
)

// ErrGatewayStep indicates an unrecoverable failure at one step of the
// gateway pipeline. Body preserves the raw upstream response for the
// error detail object.
type ErrGatewayStep struct {
	Step string
	Body string
	Err  error
}

func (e *ErrGatewayStep) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s step failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("gateway %s step failed: %s", e.Step, e.Body)
}

func (e *ErrGatewayStep) Unwrap() error {
	return e.Err
}
