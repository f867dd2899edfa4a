package service

import (
	"github.com/protecar/checkout-go/internal/domain"

	"go.uber.org/zap"
)

// subscriptionPool is the share of every subscription distributed
// between platform, commissions and the remainder wallets. The other
// 70% stays with the receiving account.
const (
	subscriptionPool = 30.0
	platformShare    = 15.0
)

// buildChargeSplit routes the one-time charge. The referring affiliate
// with a wallet takes the full value; without a resolvable wallet the
// charge goes unsplit and stays with the receiving account.
func (s *CheckoutService) buildChargeSplit(chain *domain.AffiliateChain) []domain.SplitEntry {
	if chain == nil || chain.Affiliate == nil || !chain.Affiliate.HasWallet() {
		s.logger.Warn("checkout: no affiliate wallet for charge split, charge goes unsplit")
		return nil
	}
	return []domain.SplitEntry{{
		WalletID:        *chain.Affiliate.WalletID,
		PercentualValue: 100,
	}}
}

// buildSubscriptionSplit distributes the 30% subscription pool: a fixed
// platform share, the affiliate commission, the manager commission when
// the referrer qualifies, and whatever remains halved across the two
// remainder wallets. Commission entries stay in the payload even when
// they exceed the pool; only the remainder is floored at zero.
func (s *CheckoutService) buildSubscriptionSplit(chain *domain.AffiliateChain) []domain.SplitEntry {
	var entries []domain.SplitEntry
	allocated := 0.0

	add := func(walletID string, pct float64) {
		if walletID == "" || pct <= 0 {
			return
		}
		for _, e := range entries {
			if e.WalletID == walletID {
				return
			}
		}
		entries = append(entries, domain.SplitEntry{WalletID: walletID, PercentualValue: pct})
		allocated += pct
	}

	add(s.cfg.PlatformWalletID, platformShare)

	if chain != nil && chain.Affiliate.HasWallet() {
		add(*chain.Affiliate.WalletID, chain.Affiliate.CommissionPercentage*100)
	}
	if chain.ManagerQualifies() && chain.Manager.HasWallet() {
		add(*chain.Manager.WalletID, chain.Manager.CommissionPercentage*100)
	}

	remainder := subscriptionPool - allocated
	if remainder < 0 {
		s.logger.Warn("checkout: subscription commissions exceed split pool",
			zap.Float64("allocated", allocated),
			zap.Float64("pool", subscriptionPool),
		)
		s.metrics.IncrSplitOverallocation()
		remainder = 0
	}
	if remainder > 0 {
		half := remainder / 2
		add(s.cfg.RemainderWalletA, half)
		add(s.cfg.RemainderWalletB, half)
	}

	return entries
}

// buildSplitReport audits a split list against the charged value.
func buildSplitReport(entries []domain.SplitEntry, total float64) *domain.SplitReport {
	report := &domain.SplitReport{
		Affiliates: make([]domain.SplitAudit, 0, len(entries)),
		ValorTotal: total,
	}
	for _, e := range entries {
		report.Affiliates = append(report.Affiliates, domain.SplitAudit{
			WalletID:   e.WalletID,
			Percentual: e.PercentualValue,
			Value:      round2(total * e.PercentualValue / 100),
		})
		report.TotalPercentual += e.PercentualValue
	}
	report.RemainingPercentual = 100 - report.TotalPercentual
	return report
}
