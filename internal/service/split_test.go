package service

import (
	"testing"

	"github.com/protecar/checkout-go/internal/domain"
)

func splitService(t *testing.T) *CheckoutService {
	t.Helper()
	return newTestService(&mockGateway{}, nil, nil, nil)
}

func entriesEqual(t *testing.T, got []domain.SplitEntry, want []domain.SplitEntry) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("split = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i].WalletID != want[i].WalletID || got[i].PercentualValue != want[i].PercentualValue {
			t.Errorf("split[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBuildChargeSplit(t *testing.T) {
	svc := splitService(t)

	t.Run("affiliate with wallet takes everything", func(t *testing.T) {
		chain := &domain.AffiliateChain{
			Affiliate: &domain.Affiliate{ID: "aff_1", WalletID: strptr("wal_aff")},
		}
		entriesEqual(t, svc.buildChargeSplit(chain), []domain.SplitEntry{
			{WalletID: "wal_aff", PercentualValue: 100},
		})
	})

	t.Run("no wallet means no split", func(t *testing.T) {
		chain := &domain.AffiliateChain{Affiliate: &domain.Affiliate{ID: "aff_1"}}
		if got := svc.buildChargeSplit(chain); len(got) != 0 {
			t.Errorf("split = %+v, want empty", got)
		}
	})

	t.Run("nil chain means no split", func(t *testing.T) {
		if got := svc.buildChargeSplit(nil); len(got) != 0 {
			t.Errorf("split = %+v, want empty", got)
		}
	})
}

func TestBuildSubscriptionSplit(t *testing.T) {
	tests := []struct {
		name  string
		chain *domain.AffiliateChain
		want  []domain.SplitEntry
	}{
		{
			name: "affiliate only, remainder halved",
			chain: &domain.AffiliateChain{
				Affiliate: &domain.Affiliate{ID: "aff_1", WalletID: strptr("wal_aff"), CommissionPercentage: 0.10},
			},
			want: []domain.SplitEntry{
				{WalletID: "wal_platform", PercentualValue: 15},
				{WalletID: "wal_aff", PercentualValue: 10},
				{WalletID: "wal_rem_a", PercentualValue: 2.5},
				{WalletID: "wal_rem_b", PercentualValue: 2.5},
			},
		},
		{
			name: "manager qualifies by type",
			chain: &domain.AffiliateChain{
				Affiliate: &domain.Affiliate{ID: "aff_1", WalletID: strptr("wal_aff"), CommissionPercentage: 0.05},
				Manager:   &domain.Affiliate{ID: "mgr_1", WalletID: strptr("wal_mgr"), CommissionPercentage: 0.03, Type: "gerente"},
			},
			want: []domain.SplitEntry{
				{WalletID: "wal_platform", PercentualValue: 15},
				{WalletID: "wal_aff", PercentualValue: 5},
				{WalletID: "wal_mgr", PercentualValue: 3},
				{WalletID: "wal_rem_a", PercentualValue: 3.5},
				{WalletID: "wal_rem_b", PercentualValue: 3.5},
			},
		},
		{
			name: "manager qualifies by commission floor",
			chain: &domain.AffiliateChain{
				Affiliate: &domain.Affiliate{ID: "aff_1", WalletID: strptr("wal_aff"), CommissionPercentage: 0.05},
				Manager:   &domain.Affiliate{ID: "mgr_1", WalletID: strptr("wal_mgr"), CommissionPercentage: 0.09},
			},
			want: []domain.SplitEntry{
				{WalletID: "wal_platform", PercentualValue: 15},
				{WalletID: "wal_aff", PercentualValue: 5},
				{WalletID: "wal_mgr", PercentualValue: 9},
				{WalletID: "wal_rem_a", PercentualValue: 0.5},
				{WalletID: "wal_rem_b", PercentualValue: 0.5},
			},
		},
		{
			name: "manager below floor and without type gets nothing",
			chain: &domain.AffiliateChain{
				Affiliate: &domain.Affiliate{ID: "aff_1", WalletID: strptr("wal_aff"), CommissionPercentage: 0.10},
				Manager:   &domain.Affiliate{ID: "mgr_1", WalletID: strptr("wal_mgr"), CommissionPercentage: 0.05},
			},
			want: []domain.SplitEntry{
				{WalletID: "wal_platform", PercentualValue: 15},
				{WalletID: "wal_aff", PercentualValue: 10},
				{WalletID: "wal_rem_a", PercentualValue: 2.5},
				{WalletID: "wal_rem_b", PercentualValue: 2.5},
			},
		},
		{
			name: "affiliate without wallet leaves pool to platform and remainder",
			chain: &domain.AffiliateChain{
				Affiliate: &domain.Affiliate{ID: "aff_1", CommissionPercentage: 0.10},
			},
			want: []domain.SplitEntry{
				{WalletID: "wal_platform", PercentualValue: 15},
				{WalletID: "wal_rem_a", PercentualValue: 7.5},
				{WalletID: "wal_rem_b", PercentualValue: 7.5},
			},
		},
		{
			name:  "empty chain",
			chain: &domain.AffiliateChain{},
			want: []domain.SplitEntry{
				{WalletID: "wal_platform", PercentualValue: 15},
				{WalletID: "wal_rem_a", PercentualValue: 7.5},
				{WalletID: "wal_rem_b", PercentualValue: 7.5},
			},
		},
		{
			name: "duplicate wallet kept once",
			chain: &domain.AffiliateChain{
				Affiliate: &domain.Affiliate{ID: "aff_1", WalletID: strptr("wal_shared"), CommissionPercentage: 0.10},
				Manager:   &domain.Affiliate{ID: "mgr_1", WalletID: strptr("wal_shared"), CommissionPercentage: 0.09},
			},
			want: []domain.SplitEntry{
				{WalletID: "wal_platform", PercentualValue: 15},
				{WalletID: "wal_shared", PercentualValue: 10},
				{WalletID: "wal_rem_a", PercentualValue: 2.5},
				{WalletID: "wal_rem_b", PercentualValue: 2.5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := splitService(t)
			entriesEqual(t, svc.buildSubscriptionSplit(tt.chain), tt.want)
		})
	}
}

func TestBuildSubscriptionSplitOverallocation(t *testing.T) {
	svc := splitService(t)

	// 15 + 12 + 9 = 36 > 30: commissions pass through, remainder floors
	// at zero and the counter records the incident.
	chain := &domain.AffiliateChain{
		Affiliate: &domain.Affiliate{ID: "aff_1", WalletID: strptr("wal_aff"), CommissionPercentage: 0.12},
		Manager:   &domain.Affiliate{ID: "mgr_1", WalletID: strptr("wal_mgr"), CommissionPercentage: 0.09},
	}

	before := svc.metrics.SplitOverallocationCount()
	got := svc.buildSubscriptionSplit(chain)
	entriesEqual(t, got, []domain.SplitEntry{
		{WalletID: "wal_platform", PercentualValue: 15},
		{WalletID: "wal_aff", PercentualValue: 12},
		{WalletID: "wal_mgr", PercentualValue: 9},
	})
	if svc.metrics.SplitOverallocationCount() != before+1 {
		t.Error("over-allocation counter not incremented")
	}
}

func TestBuildSplitReport(t *testing.T) {
	report := buildSplitReport([]domain.SplitEntry{
		{WalletID: "wal_platform", PercentualValue: 15},
		{WalletID: "wal_aff", PercentualValue: 10},
		{WalletID: "wal_rem_a", PercentualValue: 2.5},
		{WalletID: "wal_rem_b", PercentualValue: 2.5},
	}, 200)

	if report.TotalPercentual != 30 {
		t.Errorf("TotalPercentual = %v, want 30", report.TotalPercentual)
	}
	if report.RemainingPercentual != 70 {
		t.Errorf("RemainingPercentual = %v, want 70", report.RemainingPercentual)
	}
	if report.ValorTotal != 200 {
		t.Errorf("ValorTotal = %v, want 200", report.ValorTotal)
	}
	if report.Affiliates[0].Value != 30 {
		t.Errorf("platform value = %v, want 30", report.Affiliates[0].Value)
	}
	if report.Affiliates[2].Value != 5 {
		t.Errorf("remainder value = %v, want 5", report.Affiliates[2].Value)
	}

	empty := buildSplitReport(nil, 150)
	if len(empty.Affiliates) != 0 || empty.TotalPercentual != 0 || empty.RemainingPercentual != 100 {
		t.Errorf("empty report = %+v", empty)
	}
}
