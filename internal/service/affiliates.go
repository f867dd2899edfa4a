package service

import (
	"context"
	"errors"
	"time"

	"github.com/protecar/checkout-go/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// cachedAffiliate fetches one affiliate through the TTL cache, with
// singleflight collapsing concurrent fills for the same id.
func (s *CheckoutService) cachedAffiliate(ctx context.Context, affiliateID string) (*domain.Affiliate, error) {
	if aff, ok := s.affCache.Get(affiliateID); ok {
		s.metrics.IncrCacheHit("affiliate")
		return aff, nil
	}
	s.metrics.IncrCacheMiss("affiliate")

	out, err, _ := s.sf.Do("affiliate:"+affiliateID, func() (any, error) {
		aff, err := s.affiliates.GetAffiliate(ctx, affiliateID)
		if err != nil {
			return nil, err
		}
		s.affCache.Set(affiliateID, aff)
		return aff, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.Affiliate), nil
}

// resolveAffiliateChain resolves the referring affiliate and its
// referrer. Lookup failures never fail a checkout: the chain degrades
// to absent links and the split logic copes.
func (s *CheckoutService) resolveAffiliateChain(ctx context.Context, affiliateID string) *domain.AffiliateChain {
	chain := &domain.AffiliateChain{}
	if affiliateID == "" {
		return chain
	}

	aff, err := s.cachedAffiliate(ctx, affiliateID)
	if err != nil {
		s.logger.Warn("checkout: affiliate lookup failed, proceeding without split",
			zap.String("affiliate_id", affiliateID),
			zap.Error(err),
		)
		return chain
	}
	chain.Affiliate = aff

	if aff.ReferralID == nil || *aff.ReferralID == "" {
		return chain
	}
	manager, err := s.cachedAffiliate(ctx, *aff.ReferralID)
	if err != nil {
		s.logger.Warn("checkout: manager lookup failed, proceeding without manager share",
			zap.String("referral_id", *aff.ReferralID),
			zap.Error(err),
		)
		return chain
	}
	chain.Manager = manager
	return chain
}

// GetAffiliateChain exposes the resolved referral chain. Unlike the
// checkout path, a missing affiliate here is an error for the caller.
func (s *CheckoutService) GetAffiliateChain(ctx context.Context, affiliateID string) (*domain.AffiliateChain, error) {
	ctx, span := tracer.Start(ctx, "service.GetAffiliateChain")
	defer span.End()

	aff, err := s.cachedAffiliate(ctx, affiliateID)
	if err != nil {
		return nil, err
	}

	chain := &domain.AffiliateChain{Affiliate: aff}
	if aff.ReferralID != nil && *aff.ReferralID != "" {
		if manager, err := s.cachedAffiliate(ctx, *aff.ReferralID); err == nil {
			chain.Manager = manager
		}
	}
	return chain, nil
}

// ListPlans returns the insurance plan catalogue through the TTL cache.
func (s *CheckoutService) ListPlans(ctx context.Context) ([]domain.InsurancePlan, error) {
	ctx, span := tracer.Start(ctx, "service.ListPlans")
	defer span.End()

	if plans, ok := s.planCache.Get("all"); ok {
		s.metrics.IncrCacheHit("plans")
		return plans, nil
	}
	s.metrics.IncrCacheMiss("plans")

	plans, err := s.plans.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	s.planCache.Set("all", plans)
	return plans, nil
}

// FetchPixQr fetches the PIX QR for an existing charge, polling while
// the gateway still reports it unavailable.
func (s *CheckoutService) FetchPixQr(ctx context.Context, paymentID string) (*domain.PixQrCode, error) {
	ctx, span := tracer.Start(ctx, "service.FetchPixQr")
	defer span.End()

	return s.pollPixQr(ctx, paymentID)
}

// Health probes the external dependencies concurrently. The gateway
// probe treats "customer not found" as healthy reachability.
func (s *CheckoutService) Health(ctx context.Context) *domain.HealthStatus {
	ctx, span := tracer.Start(ctx, "service.Health")
	defer span.End()

	status := &domain.HealthStatus{Status: "healthy"}
	results := make([]domain.ServiceHealth, 2)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		results[0] = probe(gctx, "database", func(ctx context.Context) error {
			_, err := s.plans.ListPlans(ctx)
			return err
		})
		return nil
	})
	g.Go(func() error {
		results[1] = probe(gctx, "gateway", func(ctx context.Context) error {
			_, err := s.gateway.FindCustomerByDocument(ctx, "00000000000")
			var notFound *domain.ErrNotFound
			if errors.As(err, &notFound) {
				return nil
			}
			return err
		})
		return nil
	})
	_ = g.Wait()

	status.Services = results
	for _, svc := range results {
		if svc.Status != "healthy" {
			status.Status = "degraded"
		}
	}
	return status
}

func probe(ctx context.Context, name string, check func(context.Context) error) domain.ServiceHealth {
	start := time.Now()
	health := domain.ServiceHealth{
		Name:        name,
		Status:      "healthy",
		LastChecked: start.UTC().Format(time.RFC3339),
	}
	if err := check(ctx); err != nil {
		health.Status = "unhealthy"
	}
	health.LatencyMs = time.Since(start).Milliseconds()
	return health
}
