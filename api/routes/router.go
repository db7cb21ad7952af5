package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/commissary-backend/api/controllers"
	"github.com/angelmondragon/commissary-backend/api/middleware"
	"github.com/angelmondragon/commissary-backend/internal/dashboard"
	"github.com/angelmondragon/commissary-backend/internal/eventlog"
	"github.com/angelmondragon/commissary-backend/internal/ledger"
	"github.com/angelmondragon/commissary-backend/internal/orders"
	"github.com/angelmondragon/commissary-backend/internal/purchases"
	"github.com/angelmondragon/commissary-backend/pkg/config"
	"github.com/angelmondragon/commissary-backend/pkg/enums"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/commissary-backend/pkg/redis"
	"github.com/angelmondragon/commissary-backend/pkg/storage"
)

// formOverhead is added to the upload cap so the text fields of a multipart
// form fit alongside a maximum size file.
const formOverhead = 1 << 20

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	readiness map[string]controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	files storage.Store,
	stockService ledger.Service,
	logService eventlog.Service,
	purchaseService purchases.Service,
	orderService orders.Service,
	dashboardService dashboard.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, readiness, logg))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/uploads/{filename}", controllers.UploadServe(files, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BodyLimit(cfg.Storage.MaxUploadBytes() + formOverhead))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/dashboard", controllers.DashboardSummary(dashboardService, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/logout", controllers.AuthLogout())
			r.Get("/logout", controllers.AuthLogout())
		})

		r.Route("/inventory", stockRoutes(stockService, enums.StockKindInventory, logg))
		r.Route("/materials", stockRoutes(stockService, enums.StockKindMaterial, logg))
		r.Route("/waste-logs", logRoutes(logService, enums.LogKindWaste, logg))
		r.Route("/material-logs", logRoutes(logService, enums.LogKindMaterial, logg))

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", controllers.PurchaseList(purchaseService, logg))
			r.Post("/", controllers.PurchaseCreate(purchaseService, logg))
			r.Get("/{id}", controllers.PurchaseGet(purchaseService, logg))
			r.Post("/{id}", controllers.PurchaseUpdate(purchaseService, logg))
			r.Put("/{id}", controllers.PurchaseUpdate(purchaseService, logg))
			r.Delete("/{id}", controllers.PurchaseDelete(purchaseService, logg))
			r.Post("/{id}/delete", controllers.PurchaseDelete(purchaseService, logg))
		})
		r.Get("/expenses/daily", controllers.ExpensesDaily(purchaseService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Post("/", controllers.OrderCreate(orderService, logg))
			r.Get("/{orderNumber}", controllers.OrderGet(orderService, logg))
			r.Get("/{orderNumber}/export", controllers.OrderExport(orderService, logg))
			r.Delete("/{orderNumber}", controllers.OrderDelete(orderService, logg))
			r.Post("/{orderNumber}/delete", controllers.OrderDelete(orderService, logg))
		})
	})

	return r
}

func stockRoutes(svc ledger.Service, kind enums.StockKind, logg *logger.Logger) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", controllers.StockList(svc, kind, logg))
		r.Post("/", controllers.StockCreate(svc, kind, logg))
		r.Get("/by-date", controllers.StockByDate(svc, kind, logg))
		r.Get("/{id}", controllers.StockGet(svc, kind, logg))
		r.Post("/{id}", controllers.StockUpdate(svc, kind, logg))
		r.Put("/{id}", controllers.StockUpdate(svc, kind, logg))
		r.Delete("/{id}", controllers.StockDelete(svc, kind, logg))
		r.Post("/{id}/delete", controllers.StockDelete(svc, kind, logg))
	}
}

func logRoutes(svc eventlog.Service, kind enums.LogKind, logg *logger.Logger) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", controllers.LogList(svc, kind, logg))
		r.Post("/", controllers.LogCreate(svc, kind, logg))
		r.Get("/by-date", controllers.LogByDate(svc, kind, logg))
		r.Get("/{id}", controllers.LogGet(svc, kind, logg))
		r.Post("/{id}", controllers.LogUpdate(svc, kind, logg))
		r.Put("/{id}", controllers.LogUpdate(svc, kind, logg))
		r.Delete("/{id}", controllers.LogDelete(svc, kind, logg))
		r.Post("/{id}/delete", controllers.LogDelete(svc, kind, logg))
	}
}
