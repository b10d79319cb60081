package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kinaskak/storefront-backend/api/controllers"
	"github.com/kinaskak/storefront-backend/api/middleware"
	cartsvc "github.com/kinaskak/storefront-backend/internal/cart"
	catalogsvc "github.com/kinaskak/storefront-backend/internal/catalog"
	checkoutsvc "github.com/kinaskak/storefront-backend/internal/checkout"
	"github.com/kinaskak/storefront-backend/pkg/config"
	"github.com/kinaskak/storefront-backend/pkg/db"
	"github.com/kinaskak/storefront-backend/pkg/logger"
	"github.com/kinaskak/storefront-backend/pkg/metrics"
	pkgredis "github.com/kinaskak/storefront-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *pkgredis.Client
	CatalogService  catalogsvc.Service
	CartService     cartsvc.Service
	CheckoutService checkoutsvc.Service
	Registry        *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(deps.Registry)

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.DB, readinessPinger(deps.Redis), deps.Logger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CartToken(deps.Config.CartToken, deps.Logger))
		r.Use(middleware.Idempotency(idempotencyStore(deps.Redis), deps.Logger))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.CatalogService, deps.Logger))
			r.Get("/{handle}", controllers.GetProduct(deps.CatalogService, deps.Logger))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.ViewCart(deps.CartService, deps.Config.CartToken, deps.Logger))
			r.Post("/add", controllers.AddCartItem(deps.CartService, deps.Config.CartToken, deps.Logger))
			r.Post("/update", controllers.UpdateCartItem(deps.CartService, deps.Config.CartToken, deps.Logger))
			r.Post("/remove", controllers.RemoveCartItem(deps.CartService, deps.Config.CartToken, deps.Logger))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.StartCheckout(deps.CheckoutService, deps.Config.CartToken, deps.Logger))
			r.Post("/status", controllers.UpdateCheckoutStatus(deps.CheckoutService, deps.Logger))
			r.Get("/{id}", controllers.GetCheckoutStatus(deps.CheckoutService, deps.Logger))
		})
	})

	return r
}

// readinessPinger keeps the typed-nil *Client from masquerading as a live
// pinger inside the controller's interface check.
func readinessPinger(client *pkgredis.Client) db.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyStore(client *pkgredis.Client) pkgredis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
