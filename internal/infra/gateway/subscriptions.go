package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/protecar/checkout-go/internal/domain"

	"go.uber.org/zap"
)

// CreateSubscription creates the recurring monthly premium.
func (c *Client) CreateSubscription(ctx context.Context, payload *domain.SubscriptionPayload) (*domain.SubscriptionResponse, error) {
	ctx, span := tracer.Start(ctx, "gateway.CreateSubscription")
	defer span.End()

	out, err := c.execute(func() (any, error) {
		body, status, err := c.do(ctx, http.MethodPost, "/subscriptions", payload)
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "gateway", Err: err}
		}
		if status < 200 || status >= 300 || hasErrors(body) {
			return nil, &domain.ErrGatewayStep{Step: domain.GatewayStepSubscription, Body: string(body)}
		}

		var sub domain.SubscriptionResponse
		if err := json.Unmarshal(body, &sub); err != nil {
			return nil, &domain.ErrExternalService{Service: "gateway", Err: err}
		}
		if sub.ID == "" {
			return nil, &domain.ErrGatewayStep{Step: domain.GatewayStepSubscription, Body: string(body)}
		}

		c.logger.Info("gateway: subscription created",
			zap.String("subscription_id", sub.ID),
			zap.Float64("value", sub.Value),
		)
		return &sub, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.SubscriptionResponse), nil
}
