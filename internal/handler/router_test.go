package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/protecar/checkout-go/internal/domain"
	"github.com/protecar/checkout-go/internal/infra/cache"
	"github.com/protecar/checkout-go/internal/infra/observability"
	"github.com/protecar/checkout-go/internal/infra/resilience"
	"github.com/protecar/checkout-go/internal/service"

	"go.uber.org/zap"
)

type stubGateway struct {
	chargeErr error
}

func (s *stubGateway) FindCustomerByDocument(ctx context.Context, document string) (*domain.GatewayCustomer, error) {
	return nil, &domain.ErrNotFound{Resource: "gateway_customer", ID: document}
}

func (s *stubGateway) CreateCustomer(ctx context.Context, p *domain.CustomerPayload) (*domain.GatewayCustomer, error) {
	return &domain.GatewayCustomer{ID: "cus_1", Name: p.Name}, nil
}

func (s *stubGateway) TokenizeCard(ctx context.Context, p *domain.TokenizePayload) (string, error) {
	return "tok_1", nil
}

func (s *stubGateway) CreateCharge(ctx context.Context, p *domain.ChargePayload) (*domain.ChargeResponse, error) {
	if s.chargeErr != nil {
		return nil, s.chargeErr
	}
	return &domain.ChargeResponse{
		ID:          "pay_1",
		Status:      "PENDING",
		BillingType: p.BillingType,
		Value:       float64(p.Value),
		DueDate:     p.DueDate,
		InvoiceURL:  "https://gw.example/i/pay_1",
	}, nil
}

func (s *stubGateway) GetPixQrCode(ctx context.Context, paymentID string) (*domain.PixQrCode, error) {
	return &domain.PixQrCode{EncodedImage: "img", Payload: "copia-e-cola"}, nil
}

func (s *stubGateway) CreateSubscription(ctx context.Context, p *domain.SubscriptionPayload) (*domain.SubscriptionResponse, error) {
	return &domain.SubscriptionResponse{ID: "sub_1", Status: "ACTIVE"}, nil
}

type stubAffiliateStore struct{}

func (s *stubAffiliateStore) GetAffiliate(ctx context.Context, id string) (*domain.Affiliate, error) {
	if id != "aff_1" {
		return nil, &domain.ErrNotFound{Resource: "affiliate", ID: id}
	}
	wallet := "wal_aff"
	return &domain.Affiliate{ID: "aff_1", Name: "Loja Centro", WalletID: &wallet, CommissionPercentage: 0.10}, nil
}

type stubPlanStore struct{}

func (s *stubPlanStore) ListPlans(ctx context.Context) ([]domain.InsurancePlan, error) {
	return []domain.InsurancePlan{{ID: "plan_1", CategoryName: "Ouro", Adesao: 150, MonthlyPayment: 100}}, nil
}

func newTestRouter(t *testing.T, gw *stubGateway) http.Handler {
	t.Helper()
	svc := service.NewCheckoutService(
		gw,
		&stubAffiliateStore{},
		&stubPlanStore{},
		nil,
		cache.New[*domain.Affiliate](time.Minute),
		cache.New[[]domain.InsurancePlan](time.Minute),
		service.CheckoutConfig{
			PlatformWalletID: "wal_platform",
			RemainderWalletA: "wal_rem_a",
			RemainderWalletB: "wal_rem_b",
			QrRetry:          resilience.Config{MaxRetries: 1, InitialBackoff: time.Millisecond},
		},
		observability.NewMetrics(),
		zap.NewNop(),
	)
	return NewRouter(svc, observability.NewMetrics(), zap.NewNop())
}

func checkoutBody() string {
	return `{
		"name": "Maria Souza",
		"email": "maria@example.com",
		"phone": "(11) 98888-7777",
		"cpfCnpj": "390.533.447-05",
		"externalReference": "aff_1",
		"plano": {"id": "plan_1", "category_name": "Ouro", "adesao": 150, "monthly_payment": 100},
		"finalValue": "150.00",
		"paymentMethod": "PIX"
	}`
}

func TestCheckoutEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubGateway{})

	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader(checkoutBody()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result domain.CheckoutResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success || result.Status != domain.CheckoutStatusComplete {
		t.Errorf("result = %+v", result)
	}
	if result.Payment == nil || result.Payment.ID != "pay_1" {
		t.Errorf("payment = %+v", result.Payment)
	}
	if result.Pix == nil || result.Pix.Payload != "copia-e-cola" {
		t.Errorf("pix = %+v", result.Pix)
	}
}

func TestCheckoutEndpointInvalidJSON(t *testing.T) {
	router := newTestRouter(t, &stubGateway{})

	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "invalid_json" || resp.Success {
		t.Errorf("response = %+v", resp)
	}
}

func TestCheckoutEndpointValidationError(t *testing.T) {
	router := newTestRouter(t, &stubGateway{})

	body := strings.Replace(checkoutBody(), `"150.00"`, `"abc"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp errorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "invalid_amount" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestCheckoutEndpointGatewayError(t *testing.T) {
	gw := &stubGateway{chargeErr: &domain.ErrGatewayStep{
		Step: domain.GatewayStepCharge,
		Body: `{"errors":[{"code":"invalid_value"}]}`,
	}}
	router := newTestRouter(t, gw)

	req := httptest.NewRequest(http.MethodPost, "/v1/checkout", strings.NewReader(checkoutBody()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp errorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "gateway_error" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestPlansEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubGateway{})

	req := httptest.NewRequest(http.MethodGet, "/v1/plans", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Plans []domain.InsurancePlan `json:"plans"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Plans) != 1 || resp.Plans[0].CategoryName != "Ouro" {
		t.Errorf("plans = %+v", resp.Plans)
	}
}

func TestAffiliateEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubGateway{})

	req := httptest.NewRequest(http.MethodGet, "/v1/affiliates/aff_1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var chain domain.AffiliateChain
	json.NewDecoder(rec.Body).Decode(&chain)
	if chain.Affiliate == nil || chain.Affiliate.ID != "aff_1" {
		t.Errorf("chain = %+v", chain)
	}
}

func TestAffiliateEndpointNotFound(t *testing.T) {
	router := newTestRouter(t, &stubGateway{})

	req := httptest.NewRequest(http.MethodGet, "/v1/affiliates/aff_missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPixLookupEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubGateway{})

	req := httptest.NewRequest(http.MethodGet, "/v1/payments/pay_1/pix", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var qr domain.PixQrCode
	json.NewDecoder(rec.Body).Decode(&qr)
	if qr.Payload != "copia-e-cola" {
		t.Errorf("qr = %+v", qr)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t, &stubGateway{})

	for _, path := range []string{"/ping", "/readyz", "/healthz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}
