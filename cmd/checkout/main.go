package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/protecar/checkout-go/internal/config"
	"github.com/protecar/checkout-go/internal/domain"
	"github.com/protecar/checkout-go/internal/handler"
	"github.com/protecar/checkout-go/internal/infra/cache"
	"github.com/protecar/checkout-go/internal/infra/gateway"
	"github.com/protecar/checkout-go/internal/infra/inspection"
	"github.com/protecar/checkout-go/internal/infra/observability"
	"github.com/protecar/checkout-go/internal/infra/resilience"
	"github.com/protecar/checkout-go/internal/infra/supabase"
	"github.com/protecar/checkout-go/internal/port"
	"github.com/protecar/checkout-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	config.LoadDotEnv(".env")
	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, "checkout-go")
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(ctx); err != nil {
				logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	retryCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	}

	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		resilience.NewCircuitBreaker("supabase"),
		retryCfg,
		logger,
	)
	gw := gateway.NewClient(
		httpClient,
		cfg.GatewayBaseURL,
		cfg.GatewayAPIKey,
		resilience.NewCircuitBreaker("gateway"),
		logger,
	)

	var notifier port.InspectionNotifier
	if cfg.InspectionAPIURL != "" {
		notifier = inspection.NewClient(
			httpClient,
			cfg.InspectionAPIURL,
			resilience.NewCircuitBreaker("inspection"),
			logger,
		)
	}

	svc := service.NewCheckoutService(
		gw,
		store,
		store,
		notifier,
		cache.New[*domain.Affiliate](cfg.CacheTTL),
		cache.New[[]domain.InsurancePlan](cfg.CacheTTL),
		service.CheckoutConfig{
			PlatformWalletID: cfg.PlatformWalletID,
			RemainderWalletA: cfg.RemainderWalletA,
			RemainderWalletB: cfg.RemainderWalletB,
			QrRetry:          retryCfg,
			MaxConcurrency:   cfg.MaxConcurrency,
		},
		metrics,
		logger,
	)

	router := handler.NewRouter(svc, metrics, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
