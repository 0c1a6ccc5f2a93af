package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/borrowhub/borrowhub-backend/api/routes"
	"github.com/borrowhub/borrowhub-backend/internal/chat"
	"github.com/borrowhub/borrowhub-backend/internal/disputes"
	"github.com/borrowhub/borrowhub-backend/internal/notifications"
	"github.com/borrowhub/borrowhub-backend/internal/rentals"
	"github.com/borrowhub/borrowhub-backend/internal/stats"
	"github.com/borrowhub/borrowhub-backend/internal/wallet"
	paymentwebhook "github.com/borrowhub/borrowhub-backend/internal/webhooks/payment"
	"github.com/borrowhub/borrowhub-backend/pkg/config"
	"github.com/borrowhub/borrowhub-backend/pkg/db"
	"github.com/borrowhub/borrowhub-backend/pkg/gateway"
	"github.com/borrowhub/borrowhub-backend/pkg/logger"
	"github.com/borrowhub/borrowhub-backend/pkg/metrics"
	"github.com/borrowhub/borrowhub-backend/pkg/migrate"
	"github.com/borrowhub/borrowhub-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gatewayClient, err := gateway.NewClient(context.Background(), cfg.Gateway, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rentalMetrics := metrics.NewRentalMetrics(registry)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	walletService, err := wallet.NewService(wallet.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}
	notificationService, err := notifications.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}
	chatService, err := chat.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}
	statsService, err := stats.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	rentalRepo := rentals.NewRepository(dbClient.DB())
	rentalService, err := rentals.NewService(
		rentalRepo,
		dbClient,
		walletService,
		gatewayClient,
		chatService,
		notificationService,
		statsService,
		logg,
		rentalMetrics,
		cfg.Pricing.PlatformFeePercent,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create rental service", err)
		os.Exit(1)
	}

	disputeService, err := disputes.NewService(rentalRepo, dbClient, walletService, notificationService, logg, rentalMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispute service", err)
		os.Exit(1)
	}

	webhookService, err := paymentwebhook.NewService(rentalService)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}
	webhookGuard, err := paymentwebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.IdempotencyTTL, "payment_webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gatewayClient,
			rentalService,
			disputeService,
			walletService,
			webhookService,
			webhookGuard,
			webhookMetrics,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
