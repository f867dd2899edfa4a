package supabase

import (
	"context"
	"encoding/json"

	"github.com/protecar/checkout-go/internal/domain"

	"go.uber.org/zap"
)

// planRow mirrors the insurance_plans table.
type planRow struct {
	ID             string  `json:"id"`
	CategoryName   string  `json:"category_name"`
	Adesao         float64 `json:"adesao"`
	MonthlyPayment float64 `json:"monthly_payment"`
	VehicleRange   string  `json:"vehicle_range"`
}

// ListPlans returns the insurance plan catalogue ordered by adhesion fee.
func (c *Client) ListPlans(ctx context.Context) ([]domain.InsurancePlan, error) {
	ctx, span := tracer.Start(ctx, "supabase.ListPlans")
	defer span.End()

	body, err := c.doGet(ctx, "insurance_plans?order=adesao.asc")
	if err != nil {
		return nil, err
	}

	var rows []planRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase", Err: err}
	}

	plans := make([]domain.InsurancePlan, 0, len(rows))
	for _, r := range rows {
		plans = append(plans, domain.InsurancePlan{
			ID:             r.ID,
			CategoryName:   r.CategoryName,
			Adesao:         r.Adesao,
			MonthlyPayment: r.MonthlyPayment,
			VehicleRange:   r.VehicleRange,
		})
	}

	c.logger.Debug("supabase: plans fetched", zap.Int("count", len(plans)))
	return plans, nil
}
