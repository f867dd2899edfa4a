// Package service implements the checkout orchestration: validation,
// customer dedup, card tokenization, charge and subscription creation
// with affiliate splits, PIX QR retrieval and inspection notification.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/protecar/checkout-go/internal/domain"
	"github.com/protecar/checkout-go/internal/infra/observability"
	"github.com/protecar/checkout-go/internal/infra/resilience"
	"github.com/protecar/checkout-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("service")

const pixExpirationMinutes = 60

// CheckoutConfig carries the wallet routing and tuning knobs of the
// checkout pipeline.
type CheckoutConfig struct {
	// PlatformWalletID receives the fixed platform share of every
	// subscription split.
	PlatformWalletID string
	// RemainderWalletA and RemainderWalletB divide whatever is left of
	// the subscription pool after platform and commissions.
	RemainderWalletA string
	RemainderWalletB string

	// QrRetry bounds the PIX QR polling after charge creation.
	QrRetry resilience.Config

	// MaxConcurrency caps in-flight checkouts.
	MaxConcurrency int
}

// CheckoutService orchestrates the checkout pipeline.
type CheckoutService struct {
	gateway    port.PaymentGateway
	affiliates port.AffiliateStore
	plans      port.PlanStore
	inspector  port.InspectionNotifier

	affCache  port.Cache[*domain.Affiliate]
	planCache port.Cache[[]domain.InsurancePlan]
	sf        singleflight.Group

	bulkhead *resilience.Bulkhead
	cfg      CheckoutConfig
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewCheckoutService wires the checkout pipeline.
func NewCheckoutService(
	gateway port.PaymentGateway,
	affiliates port.AffiliateStore,
	plans port.PlanStore,
	inspector port.InspectionNotifier,
	affCache port.Cache[*domain.Affiliate],
	planCache port.Cache[[]domain.InsurancePlan],
	cfg CheckoutConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CheckoutService {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 50
	}
	return &CheckoutService{
		gateway:    gateway,
		affiliates: affiliates,
		plans:      plans,
		inspector:  inspector,
		affCache:   affCache,
		planCache:  planCache,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// ProcessCheckout runs the full pipeline for one checkout request.
// Validation failures return typed errors before any gateway call; a
// subscription failure after a successful charge degrades the result to
// status "partial" instead of erroring, because the money already moved.
func (s *CheckoutService) ProcessCheckout(ctx context.Context, req *domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	ctx, span := tracer.Start(ctx, "service.ProcessCheckout")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("checkout", time.Since(start))
	}()

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.bulkhead.Release()

	finalValue, err := s.validate(req)
	if err != nil {
		s.metrics.IncrCheckout("validation_error")
		return nil, err
	}

	chain := s.resolveAffiliateChain(ctx, req.ExternalReference)

	customer, err := s.ensureCustomer(ctx, req)
	if err != nil {
		s.metrics.IncrCheckout("error")
		s.recordGatewayError(err)
		return nil, err
	}

	var cardToken string
	if req.PaymentMethod == domain.PaymentMethodCreditCard {
		cardToken, err = s.tokenizeCard(ctx, req, customer.ID)
		if err != nil {
			s.metrics.IncrCheckout("error")
			s.recordGatewayError(err)
			return nil, err
		}
	}

	chargeSplit := s.buildChargeSplit(chain)
	payload := s.buildChargePayload(req, customer.ID, finalValue, cardToken, chargeSplit)

	charge, err := s.gateway.CreateCharge(ctx, payload)
	if err != nil {
		s.metrics.IncrCheckout("error")
		s.recordGatewayError(err)
		return nil, err
	}

	result := &domain.CheckoutResult{
		Success:    true,
		Status:     domain.CheckoutStatusComplete,
		CheckoutID: uuid.NewString(),
		Customer:   customer,
		Payment: &domain.PaymentInfo{
			ID:          charge.ID,
			Status:      charge.Status,
			BillingType: charge.BillingType,
			Value:       charge.Value,
			DueDate:     charge.DueDate,
			InvoiceURL:  charge.InvoiceURL,
		},
	}

	s.attachPaymentDetails(ctx, req.PaymentMethod, charge, result)

	if s.wantsSubscription(req) {
		subSplit := s.buildSubscriptionSplit(chain)
		sub, subErr := s.createSubscription(ctx, req, customer.ID, cardToken, subSplit)
		if subErr != nil {
			s.logger.Warn("checkout: subscription failed after charge, degrading to partial",
				zap.String("payment_id", charge.ID),
				zap.Error(subErr),
			)
			s.recordGatewayError(subErr)
			result.Status = domain.CheckoutStatusPartial
			result.Subscription = nil
		} else {
			result.Subscription = &domain.SubscriptionInfo{
				ID:          sub.ID,
				Status:      sub.Status,
				Value:       sub.Value,
				NextDueDate: sub.NextDueDate,
			}
		}
	}

	// The audit block always echoes the one-time charge split; the
	// subscription payload carries its own split list to the gateway.
	result.Splits = buildSplitReport(chargeSplit, finalValue)
	result.Summary = s.buildSummary(req, finalValue, charge.DueDate)
	result.Inspection = s.notifyInspection(ctx, req, charge, result)

	s.metrics.IncrCheckout(result.Status)
	s.logger.Info("checkout: processed",
		zap.String("checkout_id", result.CheckoutID),
		zap.String("payment_id", charge.ID),
		zap.String("status", result.Status),
		zap.String("billing_type", charge.BillingType),
	)
	return result, nil
}

// validate checks the request shape and returns the parsed final value.
// It never touches the gateway.
func (s *CheckoutService) validate(req *domain.CheckoutRequest) (float64, error) {
	servicesTotal := 0.0
	for _, svc := range req.SelectedServices {
		servicesTotal += svc.Price
	}

	finalValue, err := req.FinalValue.Float64()
	if err != nil || finalValue <= 0 {
		return 0, &domain.ErrInvalidAmount{
			Raw:           req.FinalValue.String(),
			Computed:      finalValue,
			HasPlan:       req.Plano != nil,
			ServicesTotal: servicesTotal,
			Discount:      req.Discount,
		}
	}

	if req.Plano == nil && len(req.SelectedServices) == 0 {
		return 0, &domain.ErrMissingSelection{}
	}

	switch req.PaymentMethod {
	case domain.PaymentMethodPix, domain.PaymentMethodBoleto:
	case domain.PaymentMethodCreditCard:
		if missing := missingCardFields(req.CreditCard); len(missing) > 0 {
			return 0, &domain.ErrCardRequired{Missing: missing}
		}
	default:
		return 0, &domain.ErrUnsupportedPaymentMethod{Method: req.PaymentMethod}
	}

	return round2(finalValue), nil
}

// ensureCustomer reuses the gateway customer matching the document, or
// creates one when none exists.
func (s *CheckoutService) ensureCustomer(ctx context.Context, req *domain.CheckoutRequest) (*domain.GatewayCustomer, error) {
	document := digitsOnly(req.Document)

	existing, err := s.gateway.FindCustomerByDocument(ctx, document)
	if err == nil {
		s.logger.Info("checkout: reusing gateway customer",
			zap.String("customer_id", existing.ID),
		)
		return existing, nil
	}
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		return nil, err
	}

	phone := digitsOnly(req.Phone)
	return s.gateway.CreateCustomer(ctx, &domain.CustomerPayload{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             phone,
		MobilePhone:       phone,
		CpfCnpj:           document,
		PostalCode:        digitsOnly(req.PostalCode),
		Address:           req.Address,
		AddressNumber:     req.AddressNumber,
		Complement:        req.Complement,
		Province:          req.Province,
		ExternalReference: req.ExternalReference,
	})
}

func (s *CheckoutService) tokenizeCard(ctx context.Context, req *domain.CheckoutRequest, customerID string) (string, error) {
	phone := digitsOnly(req.Phone)
	return s.gateway.TokenizeCard(ctx, &domain.TokenizePayload{
		Customer: customerID,
		CreditCard: domain.CreditCardPayload{
			HolderName:  req.CreditCard.HolderName,
			Number:      digitsOnly(req.CreditCard.Number),
			ExpiryMonth: padMonth(req.CreditCard.ExpiryMonth),
			ExpiryYear:  req.CreditCard.ExpiryYear,
			Ccv:         req.CreditCard.Ccv,
		},
		CreditCardHolderInfo: domain.CreditCardHolderInfo{
			Name:          req.Name,
			Email:         req.Email,
			CpfCnpj:       digitsOnly(req.Document),
			PostalCode:    digitsOnly(req.PostalCode),
			AddressNumber: req.AddressNumber,
			Complement:    req.Complement,
			Phone:         phone,
			MobilePhone:   phone,
		},
	})
}

// buildChargePayload assembles the one-time charge with the due-date
// policy of the billing type: PIX expires 60 minutes from now, BOLETO
// and CREDIT_CARD are due in three days.
func (s *CheckoutService) buildChargePayload(req *domain.CheckoutRequest, customerID string, value float64, cardToken string, split []domain.SplitEntry) *domain.ChargePayload {
	payload := &domain.ChargePayload{
		Customer:          customerID,
		BillingType:       req.PaymentMethod,
		Value:             domain.Money(value),
		Description:       buildDescription(req),
		ExternalReference: req.ExternalReference,
		Split:             split,
	}

	switch req.PaymentMethod {
	case domain.PaymentMethodPix:
		expires := time.Now().Add(pixExpirationMinutes * time.Minute)
		expiresAfter := pixExpirationMinutes
		payload.DueDate = expires.Format("2006-01-02")
		payload.ExpiresDate = expires.Format(time.RFC3339)
		payload.ExpiresAfter = &expiresAfter
	case domain.PaymentMethodBoleto:
		cancelAfter := 1
		payload.DueDate = time.Now().AddDate(0, 0, 3).Format("2006-01-02")
		payload.DaysAfterDueDateToRegistrationCancellation = &cancelAfter
	case domain.PaymentMethodCreditCard:
		phone := digitsOnly(req.Phone)
		payload.DueDate = time.Now().AddDate(0, 0, 3).Format("2006-01-02")
		payload.CreditCardToken = cardToken
		payload.CreditCard = &domain.CreditCardPayload{
			HolderName:  req.CreditCard.HolderName,
			Number:      digitsOnly(req.CreditCard.Number),
			ExpiryMonth: padMonth(req.CreditCard.ExpiryMonth),
			ExpiryYear:  req.CreditCard.ExpiryYear,
			Ccv:         req.CreditCard.Ccv,
		}
		payload.CreditCardHolderInfo = &domain.CreditCardHolderInfo{
			Name:          req.Name,
			Email:         req.Email,
			CpfCnpj:       digitsOnly(req.Document),
			PostalCode:    digitsOnly(req.PostalCode),
			AddressNumber: req.AddressNumber,
			Complement:    req.Complement,
			Phone:         phone,
			MobilePhone:   phone,
		}
	}

	return payload
}

// wantsSubscription reports whether this checkout also opens a monthly
// subscription: card payments for a plan with a positive monthly premium.
func (s *CheckoutService) wantsSubscription(req *domain.CheckoutRequest) bool {
	return req.PaymentMethod == domain.PaymentMethodCreditCard &&
		req.Plano != nil && req.Plano.MonthlyPayment > 0
}

func (s *CheckoutService) createSubscription(ctx context.Context, req *domain.CheckoutRequest, customerID, cardToken string, split []domain.SplitEntry) (*domain.SubscriptionResponse, error) {
	return s.gateway.CreateSubscription(ctx, &domain.SubscriptionPayload{
		Customer:          customerID,
		BillingType:       domain.PaymentMethodCreditCard,
		Value:             domain.Money(round2(req.Plano.MonthlyPayment)),
		NextDueDate:       time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		Cycle:             "MONTHLY",
		Description:       fmt.Sprintf("Mensalidade %s", req.Plano.CategoryName),
		ExternalReference: req.ExternalReference,
		CreditCardToken:   cardToken,
		Split:             split,
	})
}

// attachPaymentDetails fills the method-specific details block. For PIX
// it polls for the QR code and falls back to the invoice URL when the
// gateway has not generated it in time.
func (s *CheckoutService) attachPaymentDetails(ctx context.Context, method string, charge *domain.ChargeResponse, result *domain.CheckoutResult) {
	switch method {
	case domain.PaymentMethodPix:
		qr, err := s.pollPixQr(ctx, charge.ID)
		if err != nil {
			s.logger.Warn("checkout: pix qr unavailable, falling back to invoice url",
				zap.String("payment_id", charge.ID),
				zap.Error(err),
			)
			result.Pix = &domain.PixPaymentDetails{InvoiceURL: charge.InvoiceURL}
			return
		}
		result.Pix = &domain.PixPaymentDetails{
			EncodedImage:   qr.EncodedImage,
			Payload:        qr.Payload,
			ExpirationDate: qr.ExpirationDate,
			InvoiceURL:     charge.InvoiceURL,
		}
	case domain.PaymentMethodBoleto:
		result.Boleto = &domain.BoletoPaymentDetails{
			BankSlipURL: charge.BankSlipURL,
			DueDate:     charge.DueDate,
			InvoiceURL:  charge.InvoiceURL,
		}
	case domain.PaymentMethodCreditCard:
		result.Card = &domain.CardPaymentDetails{
			InvoiceURL:            charge.InvoiceURL,
			Status:                charge.Status,
			TransactionReceiptURL: charge.TransactionReceiptURL,
		}
	}
}

// pollPixQr retries the QR fetch with backoff while the gateway reports
// it not yet available.
func (s *CheckoutService) pollPixQr(ctx context.Context, paymentID string) (*domain.PixQrCode, error) {
	var qr *domain.PixQrCode
	err := resilience.RetryWithBackoff(ctx, s.cfg.QrRetry, func() error {
		got, err := s.gateway.GetPixQrCode(ctx, paymentID)
		if err != nil {
			return err
		}
		qr = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return qr, nil
}

// notifyInspection posts the vistoria request. Best effort: any failure
// is logged and the checkout result simply omits the inspection block.
func (s *CheckoutService) notifyInspection(ctx context.Context, req *domain.CheckoutRequest, charge *domain.ChargeResponse, result *domain.CheckoutResult) *domain.InspectionResult {
	if s.inspector == nil {
		return nil
	}

	insReq := &domain.InspectionRequest{
		CustomerName:     req.Name,
		CustomerEmail:    req.Email,
		CustomerPhone:    digitsOnly(req.Phone),
		CustomerDocument: digitsOnly(req.Document),
		Vehicle:          req.Vehicle,
		PaymentID:        charge.ID,
		Value:            charge.Value,
	}
	if req.Plano != nil {
		insReq.PlanName = req.Plano.CategoryName
	}
	if result.Subscription != nil {
		insReq.SubscriptionID = result.Subscription.ID
	}

	ins, err := s.inspector.NotifyInspection(ctx, insReq)
	if err != nil {
		s.logger.Warn("checkout: inspection notification failed",
			zap.String("payment_id", charge.ID),
			zap.Error(err),
		)
		return nil
	}
	return ins
}

func (s *CheckoutService) buildSummary(req *domain.CheckoutRequest, finalValue float64, dueDate string) *domain.CheckoutSummary {
	servicesTotal := 0.0
	for _, svc := range req.SelectedServices {
		servicesTotal += svc.Price
	}

	summary := &domain.CheckoutSummary{
		ServicesTotal: round2(servicesTotal),
		Discount:      req.Discount,
		FinalValue:    finalValue,
		PaymentMethod: req.PaymentMethod,
		DueDate:       dueDate,
	}
	if req.Plano != nil {
		summary.PlanName = req.Plano.CategoryName
		summary.MonthlyPayment = req.Plano.MonthlyPayment
	}
	return summary
}

// recordGatewayError labels the gateway error counter by pipeline step.
func (s *CheckoutService) recordGatewayError(err error) {
	var step *domain.ErrGatewayStep
	if errors.As(err, &step) {
		s.metrics.IncrGatewayError(step.Step)
		return
	}
	s.metrics.IncrGatewayError("other")
}

func buildDescription(req *domain.CheckoutRequest) string {
	parts := make([]string, 0, 1+len(req.SelectedServices))
	if req.Plano != nil {
		parts = append(parts, fmt.Sprintf("Adesão %s", req.Plano.CategoryName))
	}
	for _, svc := range req.SelectedServices {
		parts = append(parts, svc.Name)
	}
	return strings.Join(parts, " + ")
}

// missingCardFields lists the structurally absent card fields. Content
// validation (luhn, expiry in the future) is the gateway's job.
func missingCardFields(card *domain.CreditCard) []string {
	if card == nil {
		return []string{"creditCard"}
	}
	var missing []string
	if card.HolderName == "" {
		missing = append(missing, "holderName")
	}
	if card.Number == "" {
		missing = append(missing, "number")
	}
	if card.ExpiryMonth == "" {
		missing = append(missing, "expiryMonth")
	}
	if card.ExpiryYear == "" {
		missing = append(missing, "expiryYear")
	}
	if card.Ccv == "" {
		missing = append(missing, "ccv")
	}
	return missing
}

// digitsOnly strips every non-digit rune (CPF/CNPJ, phone and postal
// code arrive formatted from the lead flow).
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// padMonth left-pads a single-digit expiry month to two digits.
func padMonth(m string) string {
	if len(m) == 1 {
		return "0" + m
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
