package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/protecar/checkout-go/internal/domain"
	"github.com/protecar/checkout-go/internal/infra/resilience"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL, "key_test", resilience.NewCircuitBreaker(t.Name()), zap.NewNop())
}

func TestFindCustomerByDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("access_token") != "key_test" {
			t.Errorf("access_token = %q", r.Header.Get("access_token"))
		}
		if r.URL.Path != "/customers" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("cpfCnpj") != "39053344705" {
			t.Errorf("cpfCnpj = %q", r.URL.Query().Get("cpfCnpj"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"id": "cus_1", "name": "Maria"}},
		})
	})

	customer, err := client.FindCustomerByDocument(context.Background(), "39053344705")
	if err != nil {
		t.Fatalf("FindCustomerByDocument: %v", err)
	}
	if customer.ID != "cus_1" {
		t.Errorf("customer = %+v", customer)
	}
}

func TestFindCustomerByDocumentEmptyListIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	})

	_, err := client.FindCustomerByDocument(context.Background(), "39053344705")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateCustomerErrorsFieldFailsStep(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// 200 with an errors list is still a failure.
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"code": "invalid_cpfCnpj", "description": "CPF inválido"}},
		})
	})

	_, err := client.CreateCustomer(context.Background(), &domain.CustomerPayload{Name: "Maria"})
	var step *domain.ErrGatewayStep
	if !errors.As(err, &step) {
		t.Fatalf("expected ErrGatewayStep, got %v", err)
	}
	if step.Step != domain.GatewayStepCustomer {
		t.Errorf("step = %q", step.Step)
	}
	if step.Body == "" {
		t.Error("raw body must be preserved")
	}
}

func TestTokenizeCard(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/creditCard/tokenize" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var payload domain.TokenizePayload
		json.NewDecoder(r.Body).Decode(&payload)
		if payload.Customer != "cus_1" {
			t.Errorf("customer = %q", payload.Customer)
		}
		json.NewEncoder(w).Encode(map[string]string{"creditCardToken": "tok_abc"})
	})

	token, err := client.TokenizeCard(context.Background(), &domain.TokenizePayload{Customer: "cus_1"})
	if err != nil {
		t.Fatalf("TokenizeCard: %v", err)
	}
	if token != "tok_abc" {
		t.Errorf("token = %q", token)
	}
}

func TestCreateChargeForwardsPixFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["billingType"] != "PIX" {
			t.Errorf("billingType = %v", payload["billingType"])
		}
		if payload["expiresAfter"] != float64(60) {
			t.Errorf("expiresAfter = %v", payload["expiresAfter"])
		}
		if _, ok := payload["creditCardToken"]; ok {
			t.Error("creditCardToken must be omitted for pix")
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "pay_1", "status": "PENDING"})
	})

	expiresAfter := 60
	charge, err := client.CreateCharge(context.Background(), &domain.ChargePayload{
		Customer:     "cus_1",
		BillingType:  "PIX",
		Value:        150,
		DueDate:      "2026-08-31",
		ExpiresAfter: &expiresAfter,
	})
	if err != nil {
		t.Fatalf("CreateCharge: %v", err)
	}
	if charge.ID != "pay_1" {
		t.Errorf("charge = %+v", charge)
	}
}

func TestGetPixQrCodeNotReady(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetPixQrCode(context.Background(), "pay_1")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound while qr pending, got %v", err)
	}
}

func TestGetPixQrCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/pay_1/pixQrCode" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"encodedImage":   "img",
			"payload":        "copia-e-cola",
			"expirationDate": "2026-08-31 12:00:00",
		})
	})

	qr, err := client.GetPixQrCode(context.Background(), "pay_1")
	if err != nil {
		t.Fatalf("GetPixQrCode: %v", err)
	}
	if qr.Payload != "copia-e-cola" {
		t.Errorf("qr = %+v", qr)
	}
}

func TestCreateSubscriptionGatewayError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"code": "invalid_creditCard"}},
		})
	})

	_, err := client.CreateSubscription(context.Background(), &domain.SubscriptionPayload{Customer: "cus_1"})
	var step *domain.ErrGatewayStep
	if !errors.As(err, &step) || step.Step != domain.GatewayStepSubscription {
		t.Fatalf("expected subscription step error, got %v", err)
	}
}
