package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/protecar/checkout-go/internal/domain"

	"go.uber.org/zap"
)

// FindCustomerByDocument looks up an existing gateway customer by its
// CPF/CNPJ (digits only). Returns domain.ErrNotFound when no customer
// carries that document. A miss is a normal outcome and is mapped
// outside the breaker so dedup misses never trip it.
func (c *Client) FindCustomerByDocument(ctx context.Context, document string) (*domain.GatewayCustomer, error) {
	ctx, span := tracer.Start(ctx, "gateway.FindCustomerByDocument")
	defer span.End()

	out, err := c.execute(func() (any, error) {
		path := fmt.Sprintf("/customers?cpfCnpj=%s", url.QueryEscape(document))
		body, status, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "gateway", Err: err}
		}
		if status != http.StatusOK {
			return nil, &domain.ErrGatewayStep{Step: domain.GatewayStepCustomer, Body: string(body)}
		}

		var list struct {
			Data []domain.GatewayCustomer `json:"data"`
		}
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, &domain.ErrExternalService{Service: "gateway", Err: err}
		}
		if len(list.Data) == 0 {
			return (*domain.GatewayCustomer)(nil), nil
		}
		return &list.Data[0], nil
	})
	if err != nil {
		return nil, err
	}
	customer := out.(*domain.GatewayCustomer)
	if customer == nil {
		return nil, &domain.ErrNotFound{Resource: "gateway_customer", ID: document}
	}
	return customer, nil
}

// CreateCustomer registers a new customer at the gateway.
func (c *Client) CreateCustomer(ctx context.Context, payload *domain.CustomerPayload) (*domain.GatewayCustomer, error) {
	ctx, span := tracer.Start(ctx, "gateway.CreateCustomer")
	defer span.End()

	out, err := c.execute(func() (any, error) {
		body, status, err := c.do(ctx, http.MethodPost, "/customers", payload)
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "gateway", Err: err}
		}
		if status < 200 || status >= 300 || hasErrors(body) {
			return nil, &domain.ErrGatewayStep{Step: domain.GatewayStepCustomer, Body: string(body)}
		}

		var customer domain.GatewayCustomer
		if err := json.Unmarshal(body, &customer); err != nil {
			return nil, &domain.ErrExternalService{Service: "gateway", Err: err}
		}
		if customer.ID == "" {
			return nil, &domain.ErrGatewayStep{Step: domain.GatewayStepCustomer, Body: string(body)}
		}

		c.logger.Info("gateway: customer created", zap.String("customer_id", customer.ID))
		return &customer, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.GatewayCustomer), nil
}
