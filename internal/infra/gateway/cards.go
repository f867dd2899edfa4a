package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/protecar/checkout-go/internal/domain"
)

// TokenizeCard exchanges raw card data for a reusable gateway token.
// Raw card fields never appear in logs.
func (c *Client) TokenizeCard(ctx context.Context, payload *domain.TokenizePayload) (string, error) {
	ctx, span := tracer.Start(ctx, "gateway.TokenizeCard")
	defer span.End()

	out, err := c.execute(func() (any, error) {
		body, status, err := c.do(ctx, http.MethodPost, "/creditCard/tokenize", payload)
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "gateway", Err: err}
		}
		if status < 200 || status >= 300 || hasErrors(body) {
			return nil, &domain.ErrGatewayStep{Step: domain.GatewayStepTokenize, Body: string(body)}
		}

		var result struct {
			CreditCardToken string `json:"creditCardToken"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, &domain.ErrExternalService{Service: "gateway", Err: err}
		}
		if result.CreditCardToken == "" {
			return nil, &domain.ErrGatewayStep{Step: domain.GatewayStepTokenize, Body: string(body)}
		}
		return result.CreditCardToken, nil
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
