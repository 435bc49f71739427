package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prajwalbasnet/kinbech-backend/api/controllers"
	"github.com/prajwalbasnet/kinbech-backend/api/middleware"
	"github.com/prajwalbasnet/kinbech-backend/internal/orders"
	"github.com/prajwalbasnet/kinbech-backend/internal/payments"
	"github.com/prajwalbasnet/kinbech-backend/internal/payouts"
	"github.com/prajwalbasnet/kinbech-backend/internal/wallet"
	"github.com/prajwalbasnet/kinbech-backend/pkg/auth/session"
	"github.com/prajwalbasnet/kinbech-backend/pkg/config"
	"github.com/prajwalbasnet/kinbech-backend/pkg/db"
	"github.com/prajwalbasnet/kinbech-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cacheP db.Pinger,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	ordersSvc orders.Service,
	walletSvc wallet.Service,
	payoutsSvc payouts.Service,
	paymentsSvc payments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cacheP, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(ordersSvc, logg))
			r.Get("/{orderNumber}", controllers.AdminGetOrder(ordersSvc, logg))
			r.Post("/{orderNumber}/status", controllers.AdminChangeOrderStatus(ordersSvc, logg))
			r.Get("/{orderNumber}/items", controllers.AdminOrderItems(ordersSvc, logg))
			r.Delete("/{orderNumber}", controllers.AdminDeleteOrder(ordersSvc, logg))
		})

		r.Get("/payments/overview", controllers.AdminPaymentsOverview(paymentsSvc, logg))

		r.Route("/payouts", func(r chi.Router) {
			r.Get("/", controllers.AdminListPendingPayouts(payoutsSvc, logg))
			r.Post("/{requestId}/decision", controllers.AdminDecidePayout(payoutsSvc, logg))
		})
	})

	r.Route("/api/v1/vendor", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole("vendor", logg))

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.VendorWallet(walletSvc, logg))
			r.Get("/entries", controllers.VendorWalletEntries(walletSvc, logg))
		})

		r.Route("/payouts", func(r chi.Router) {
			r.Post("/", controllers.VendorSubmitPayout(payoutsSvc, logg))
			r.Get("/", controllers.VendorListPayouts(payoutsSvc, logg))
		})
	})

	return r
}
