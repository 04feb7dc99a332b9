package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmoralesp/fieldstock-backend/api/controllers"
	"github.com/rmoralesp/fieldstock-backend/api/middleware"
	"github.com/rmoralesp/fieldstock-backend/internal/fieldops"
	"github.com/rmoralesp/fieldstock-backend/internal/purchasing"
	"github.com/rmoralesp/fieldstock-backend/internal/stock"
	"github.com/rmoralesp/fieldstock-backend/pkg/config"
	"github.com/rmoralesp/fieldstock-backend/pkg/logger"
	pkgredis "github.com/rmoralesp/fieldstock-backend/pkg/redis"
)

// RouterParams carry everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *pkgredis.Client
	Stock       stock.Service
	Purchasing  purchasing.Service
	Fieldops    fieldops.Service
	Gatherer    prometheus.Gatherer
	Idempotency pkgredis.IdempotencyStore
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Identity(p.Logger),
		middleware.Logging(p.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, map[string]controllers.Pinger{
			"database": p.DB,
			"redis":    p.Redis,
		}))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/branches/{branchID}", func(r chi.Router) {
		r.Use(middleware.Idempotency(p.Idempotency, p.Logger))

		r.Route("/products/{productID}", func(r chi.Router) {
			r.Get("/stock", controllers.StockGet(p.Stock, p.Logger))
			r.Post("/stock", controllers.StockMove(p.Stock, p.Logger))
			r.Get("/movements", controllers.StockMovements(p.Stock, p.Logger))
			r.Post("/adjust", controllers.StockAdjust(p.Stock, p.Logger))
		})
		r.Get("/stock/low", controllers.StockLow(p.Stock, p.Logger))

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Post("/", controllers.PurchaseOrderCreate(p.Purchasing, p.Logger))
			r.Get("/", controllers.PurchaseOrderList(p.Purchasing, p.Logger))
			r.Get("/{orderID}", controllers.PurchaseOrderGet(p.Purchasing, p.Logger))
			r.Post("/{orderID}/receive", controllers.PurchaseOrderReceive(p.Purchasing, p.Logger))
			r.Post("/{orderID}/status", controllers.PurchaseOrderStatus(p.Purchasing, p.Logger))
		})

		r.Route("/service-orders", func(r chi.Router) {
			r.Post("/", controllers.ServiceOrderCreate(p.Fieldops, p.Logger))
			r.Get("/", controllers.ServiceOrderList(p.Fieldops, p.Logger))
			r.Get("/{orderID}", controllers.ServiceOrderGet(p.Fieldops, p.Logger))
			r.Post("/{orderID}/status", controllers.ServiceOrderStatus(p.Fieldops, p.Logger))
			r.Post("/{orderID}/materials", controllers.MaterialAssign(p.Fieldops, p.Logger))
			r.Post("/{orderID}/materials/{itemID}/return", controllers.MaterialReturn(p.Fieldops, p.Logger))
		})
	})

	return r
}
