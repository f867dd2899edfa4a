// Package inspection notifies the vehicle inspection service after a
// successful checkout. Notification is best effort: a failure is logged
// and surfaced in the result, never propagated as a checkout error.
package inspection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/protecar/checkout-go/internal/domain"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("inspection")

// Client posts inspection requests to the inspection API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates an inspection API client.
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		logger:     logger,
	}
}

// NotifyInspection requests a vehicle inspection slot. Single attempt,
// no retries: the inspection team reconciles missed notifications from
// the payment records.
func (c *Client) NotifyInspection(ctx context.Context, req *domain.InspectionRequest) (*domain.InspectionResult, error) {
	ctx, span := tracer.Start(ctx, "inspection.NotifyInspection")
	defer span.End()

	out, err := c.cb.Execute(func() (any, error) {
		data, err := json.Marshal(req)
		if err != nil {
			return nil, err
		}

		url := fmt.Sprintf("%s/v1/inspections", c.baseURL)
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "inspection", Err: err}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "inspection", Err: err}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &domain.ErrExternalService{
				Service: "inspection",
				Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
			}
		}

		var result domain.InspectionResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, &domain.ErrExternalService{Service: "inspection", Err: err}
		}

		c.logger.Info("inspection: notified",
			zap.String("customer_document", req.CustomerDocument),
			zap.String("payment_id", req.PaymentID),
		)
		return &result, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "inspection"}
		}
		return nil, err
	}
	return out.(*domain.InspectionResult), nil
}
