// Package supabase implements the hosted-database stores (affiliates
// and the insurance plan catalogue) over the PostgREST API.
package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/protecar/checkout-go/internal/domain"
	"github.com/protecar/checkout-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client talks to the Supabase PostgREST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	serviceKey string
	cb         *gobreaker.CircuitBreaker
	retryCfg   resilience.Config
	logger     *zap.Logger
}

// NewClient creates a Supabase REST client.
func NewClient(httpClient *http.Client, baseURL, anonKey, serviceKey string, cb *gobreaker.CircuitBreaker, retryCfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		anonKey:    anonKey,
		serviceKey: serviceKey,
		cb:         cb,
		retryCfg:   retryCfg,
		logger:     logger,
	}
}

// doGet performs an authenticated PostgREST read with retry + breaker.
// The path is relative to /rest/v1/.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	var body []byte

	op := func() error {
		_, err := c.cb.Execute(func() (any, error) {
			url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}

			req.Header.Set("apikey", c.anonKey)
			req.Header.Set("Authorization", "Bearer "+c.serviceKey)
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, err
			}

			if resp.StatusCode != http.StatusOK {
				c.logger.Error("supabase: unexpected status",
					zap.String("path", path),
					zap.Int("status", resp.StatusCode),
				)
				return nil, &domain.ErrExternalService{
					Service: "supabase",
					Err:     fmt.Errorf("status %d: %s", resp.StatusCode, string(data)),
				}
			}

			body = data
			return nil, nil
		})
		return err
	}

	if err := resilience.RetryWithBackoff(ctx, c.retryCfg, op); err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, &domain.ErrCircuitOpen{Service: "supabase"}
		}
		return nil, err
	}
	return body, nil
}
