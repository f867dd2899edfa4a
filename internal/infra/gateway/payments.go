package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/protecar/checkout-go/internal/domain"

	"go.uber.org/zap"
)

// CreateCharge creates the one-time charge (adhesion or full value).
func (c *Client) CreateCharge(ctx context.Context, payload *domain.ChargePayload) (*domain.ChargeResponse, error) {
	ctx, span := tracer.Start(ctx, "gateway.CreateCharge")
	defer span.End()

	out, err := c.execute(func() (any, error) {
		body, status, err := c.do(ctx, http.MethodPost, "/payments", payload)
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "gateway", Err: err}
		}
		if status < 200 || status >= 300 || hasErrors(body) {
			return nil, &domain.ErrGatewayStep{Step: domain.GatewayStepCharge, Body: string(body)}
		}

		var charge domain.ChargeResponse
		if err := json.Unmarshal(body, &charge); err != nil {
			return nil, &domain.ErrExternalService{Service: "gateway", Err: err}
		}
		if charge.ID == "" {
			return nil, &domain.ErrGatewayStep{Step: domain.GatewayStepCharge, Body: string(body)}
		}

		c.logger.Info("gateway: charge created",
			zap.String("payment_id", charge.ID),
			zap.String("billing_type", charge.BillingType),
			zap.Float64("value", charge.Value),
		)
		return &charge, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.ChargeResponse), nil
}

// GetPixQrCode fetches the PIX QR artifact for a charge. The gateway
// generates it asynchronously, so domain.ErrNotFound means "not ready
// yet" and callers may poll. Pending QRs are mapped outside the breaker
// so polling never trips it.
func (c *Client) GetPixQrCode(ctx context.Context, paymentID string) (*domain.PixQrCode, error) {
	ctx, span := tracer.Start(ctx, "gateway.GetPixQrCode")
	defer span.End()

	out, err := c.execute(func() (any, error) {
		path := fmt.Sprintf("/payments/%s/pixQrCode", paymentID)
		body, status, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "gateway", Err: err}
		}
		if status == http.StatusNotFound {
			return (*domain.PixQrCode)(nil), nil
		}
		if status != http.StatusOK || hasErrors(body) {
			return nil, &domain.ErrGatewayStep{Step: domain.GatewayStepPixQr, Body: string(body)}
		}

		var qr domain.PixQrCode
		if err := json.Unmarshal(body, &qr); err != nil {
			return nil, &domain.ErrExternalService{Service: "gateway", Err: err}
		}
		if qr.EncodedImage == "" && qr.Payload == "" {
			return (*domain.PixQrCode)(nil), nil
		}
		return &qr, nil
	})
	if err != nil {
		return nil, err
	}
	qr := out.(*domain.PixQrCode)
	if qr == nil {
		return nil, &domain.ErrNotFound{Resource: "pix_qr", ID: paymentID}
	}
	return qr, nil
}
