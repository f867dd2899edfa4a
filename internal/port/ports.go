// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the checkout
// service from the concrete gateway, store and notifier adapters.
package port

import (
	"context"

	"github.com/protecar/checkout-go/internal/domain"
)

// PaymentGateway is the contract the checkout relies on from the payment
// provider: customer creation (with lookup for dedup), card tokenization,
// one-time charges, PIX QR retrieval and recurring subscriptions.
type PaymentGateway interface {
	// FindCustomerByDocument looks a customer up by its document digits.
	// Returns *domain.ErrNotFound when no customer matches.
	FindCustomerByDocument(ctx context.Context, document string) (*domain.GatewayCustomer, error)
	CreateCustomer(ctx context.Context, payload *domain.CustomerPayload) (*domain.GatewayCustomer, error)
	TokenizeCard(ctx context.Context, payload *domain.TokenizePayload) (string, error)
	CreateCharge(ctx context.Context, payload *domain.ChargePayload) (*domain.ChargeResponse, error)
	// GetPixQrCode returns *domain.ErrNotFound while the QR is not yet
	// available gateway-side.
	GetPixQrCode(ctx context.Context, paymentID string) (*domain.PixQrCode, error)
	CreateSubscription(ctx context.Context, payload *domain.SubscriptionPayload) (*domain.SubscriptionResponse, error)
}

// AffiliateStore retrieves affiliate rows from the relational store.
type AffiliateStore interface {
	GetAffiliate(ctx context.Context, affiliateID string) (*domain.Affiliate, error)
}

// PlanStore retrieves the insurance plan catalogue.
type PlanStore interface {
	ListPlans(ctx context.Context) ([]domain.InsurancePlan, error)
}

// InspectionNotifier posts the post-payment inspection (vistoria)
// request. Best-effort: callers must never fail a checkout on its error.
type InspectionNotifier interface {
	NotifyInspection(ctx context.Context, req *domain.InspectionRequest) (*domain.InspectionResult, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
