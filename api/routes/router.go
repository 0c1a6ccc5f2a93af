package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/borrowhub/borrowhub-backend/api/controllers"
	webhookcontrollers "github.com/borrowhub/borrowhub-backend/api/controllers/webhooks"
	"github.com/borrowhub/borrowhub-backend/api/middleware"
	"github.com/borrowhub/borrowhub-backend/internal/disputes"
	"github.com/borrowhub/borrowhub-backend/internal/rentals"
	"github.com/borrowhub/borrowhub-backend/internal/wallet"
	paymentwebhook "github.com/borrowhub/borrowhub-backend/internal/webhooks/payment"
	"github.com/borrowhub/borrowhub-backend/pkg/config"
	"github.com/borrowhub/borrowhub-backend/pkg/db"
	"github.com/borrowhub/borrowhub-backend/pkg/gateway"
	"github.com/borrowhub/borrowhub-backend/pkg/logger"
	"github.com/borrowhub/borrowhub-backend/pkg/metrics"
	"github.com/borrowhub/borrowhub-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatewayClient *gateway.Client,
	rentalService rentals.Service,
	disputeService disputes.Service,
	walletService wallet.Service,
	webhookService *paymentwebhook.Service,
	webhookGuard *paymentwebhook.IdempotencyGuard,
	webhookMetrics *metrics.WebhookMetrics,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payment", webhookcontrollers.PaymentWebhook(webhookService, gatewayClient, webhookGuard, webhookMetrics, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/rentals", func(r chi.Router) {
			r.Post("/", controllers.RentalRequest(rentalService, logg))
			r.Get("/", controllers.RentalList(rentalService, logg))
			r.Route("/{rentalId}", func(r chi.Router) {
				r.Get("/", controllers.RentalDetail(rentalService, logg))
				r.Post("/respond", controllers.RentalRespond(rentalService, logg))
				r.Post("/handover", controllers.RentalConfirmHandover(rentalService, logg))
				r.Post("/complete", controllers.RentalConfirmCompletion(rentalService, logg))
				r.Post("/dispute", controllers.RentalDisputeRaise(disputeService, logg))
				r.With(middleware.RequireRole("moderator", logg)).
					Post("/dispute/resolve", controllers.RentalDisputeResolve(disputeService, logg))
			})
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", controllers.WalletBalance(walletService, logg))
			r.Get("/transactions", controllers.WalletTransactions(walletService, logg))
		})
	})

	return r
}
