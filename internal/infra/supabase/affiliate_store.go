package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/protecar/checkout-go/internal/domain"

	"go.uber.org/zap"
)

// affiliateRow mirrors the affiliates table.
type affiliateRow struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	ReferralID           *string  `json:"referral_id"`
	WalletID             *string  `json:"wallet_id"`
	CommissionPercentage *float64 `json:"commission_percentage"`
	Type                 string   `json:"type"`
}

func (r affiliateRow) toDomain() *domain.Affiliate {
	a := &domain.Affiliate{
		ID:         r.ID,
		Name:       r.Name,
		ReferralID: r.ReferralID,
		WalletID:   r.WalletID,
		Type:       r.Type,
	}
	if r.CommissionPercentage != nil {
		a.CommissionPercentage = *r.CommissionPercentage
	}
	return a
}

// GetAffiliate fetches one affiliate by id.
// Returns domain.ErrNotFound when the row does not exist.
func (c *Client) GetAffiliate(ctx context.Context, affiliateID string) (*domain.Affiliate, error) {
	ctx, span := tracer.Start(ctx, "supabase.GetAffiliate")
	defer span.End()

	path := fmt.Sprintf("affiliates?id=eq.%s&limit=1", url.QueryEscape(affiliateID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, err
	}

	var rows []affiliateRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "affiliate", ID: affiliateID}
	}

	c.logger.Debug("supabase: affiliate fetched", zap.String("affiliate_id", affiliateID))
	return rows[0].toDomain(), nil
}
