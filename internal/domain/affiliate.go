package domain

// managerCommissionFloor is the commission at or above which a referring
// affiliate counts as a manager even without the "gerente" type.
const managerCommissionFloor = 0.09

// Affiliate is a row from the affiliates table. WalletID is the payout
// destination at the gateway; a nil WalletID excludes the affiliate from
// any split. CommissionPercentage is a 0–1 fraction.
type Affiliate struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name,omitempty"`
	ReferralID           *string `json:"referral_id,omitempty"`
	WalletID             *string `json:"wallet_id,omitempty"`
	CommissionPercentage float64 `json:"commission_percentage,omitempty"`
	Type                 string  `json:"type,omitempty"`
}

// HasWallet reports whether the affiliate can receive split payouts.
func (a *Affiliate) HasWallet() bool {
	return a != nil && a.WalletID != nil && *a.WalletID != ""
}

// QualifiesAsManager reports whether this affiliate, as someone's
// referrer, is entitled to the manager tier of the subscription split.
func (a *Affiliate) QualifiesAsManager() bool {
	if a == nil {
		return false
	}
	return a.CommissionPercentage >= managerCommissionFloor || a.Type == "gerente"
}

// AffiliateChain is the resolved two-level referral chain for a checkout.
// Either field may be nil: a failed lookup is treated as "absent", never
// as a checkout failure.
type AffiliateChain struct {
	Affiliate *Affiliate `json:"affiliate"`
	Manager   *Affiliate `json:"manager,omitempty"`
}

// ManagerQualifies reports whether the chain has a manager entitled to a
// subscription commission share.
func (c *AffiliateChain) ManagerQualifies() bool {
	return c != nil && c.Manager != nil && c.Manager.QualifiesAsManager()
}
