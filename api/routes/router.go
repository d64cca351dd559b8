package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/mixbar-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/mixbar-backend/api/controllers/cart"
	pricingcontrollers "github.com/angelmondragon/mixbar-backend/api/controllers/pricing"
	"github.com/angelmondragon/mixbar-backend/api/middleware"
	"github.com/angelmondragon/mixbar-backend/pkg/config"
	"github.com/angelmondragon/mixbar-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/mixbar-backend/pkg/redis"
)

// Deps are the collaborators the HTTP surface is built from. Redis fields
// stay nil when redis is disabled; idempotency then passes requests through.
type Deps struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	Gatherer    prometheus.Gatherer
	Pricing     pricingcontrollers.Pricer
	Cart        cartcontrollers.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Recoverer(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/pricing", func(r chi.Router) {
			r.Post("/mix", pricingcontrollers.QuoteMix(deps.Pricing, logg))
			r.Post("/products/{productId}", pricingcontrollers.QuoteProduct(deps.Pricing, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.Identity(logg))
			r.Use(middleware.Idempotency(deps.Idempotency, cfg.Cart.IdempotencyTTL, logg))

			r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{itemId}", cartcontrollers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(deps.Cart, logg))
			r.Post("/promo", cartcontrollers.CartApplyPromo(deps.Cart, logg))
			r.Delete("/promo", cartcontrollers.CartRemovePromo(deps.Cart, logg))
			r.Post("/abandon", cartcontrollers.CartAbandon(deps.Cart, logg))
		})
	})

	return r
}
