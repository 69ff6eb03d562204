package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fizzlab/salesintel/internal/config"
	"github.com/fizzlab/salesintel/internal/handler"
	"github.com/fizzlab/salesintel/internal/infra/cache"
	"github.com/fizzlab/salesintel/internal/infra/client"
	"github.com/fizzlab/salesintel/internal/infra/observability"
	"github.com/fizzlab/salesintel/internal/infra/resilience"
	"github.com/fizzlab/salesintel/internal/infra/sqlite"
	"github.com/fizzlab/salesintel/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("db_path", cfg.DBPath),
		zap.String("insight_api_url", cfg.InsightAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Float64("churn_risk_threshold", cfg.ChurnRiskThreshold),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "salesintel")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	viewCache := cache.New[any](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("insight-model")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Store ---
	store, err := sqlite.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	insightClient := client.NewInsightClient(httpClient, cfg.InsightAPIURL, cb, resilienceCfg)

	// --- Services ---
	crmSvc := service.NewCRMService(store, viewCache, metrics, logger)
	aggSvc := service.NewAggregationService(store, viewCache, metrics, logger, cfg.ChurnRiskThreshold)
	insightSvc := service.NewInsightService(store, insightClient, bulkhead, metrics, logger)
	seeder := service.NewSeeder(crmSvc, logger)

	authSvc, err := service.NewAuthService(cfg.AuthClientID, cfg.AuthClientSecret, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}

	// --- Seed demo data ---
	if cfg.SeedOnStart {
		if err := seeder.SeedIfEmpty(context.Background(), 25); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		CRM:      crmSvc,
		Agg:      aggSvc,
		Insights: insightSvc,
		Auth:     authSvc,
		Seeder:   seeder,
		Store:    store,
		Metrics:  metrics,
		Registry: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	}, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
