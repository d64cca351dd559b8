package bootstrap

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/mixbar-backend/internal/cart"
	"github.com/angelmondragon/mixbar-backend/internal/catalog"
	"github.com/angelmondragon/mixbar-backend/internal/pricing"
	"github.com/angelmondragon/mixbar-backend/internal/promos"
	"github.com/angelmondragon/mixbar-backend/pkg/config"
	"github.com/angelmondragon/mixbar-backend/pkg/db"
	"github.com/angelmondragon/mixbar-backend/pkg/logger"
	"github.com/angelmondragon/mixbar-backend/pkg/metrics"
	"github.com/angelmondragon/mixbar-backend/pkg/redis"
)

// Services is the domain graph shared by the api and worker binaries.
type Services struct {
	Pricing *pricing.Calculator
	Promos  *promos.Service
	Cart    *cart.Service
}

// NewServices wires catalog, pricing, promos and cart over one database.
// redisClient may be nil; the cart cache then falls back to a no-op.
func NewServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, reg prometheus.Registerer) (*Services, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("database client required")
	}
	conn := dbClient.DB()

	calc, err := pricing.NewCalculator(
		catalog.NewRepository(conn),
		pricing.WithLocale(cfg.Cart.DefaultLocale),
		pricing.WithMetrics(metrics.NewPricingMetrics(reg)),
	)
	if err != nil {
		return nil, fmt.Errorf("pricing calculator: %w", err)
	}

	promoRepo := promos.NewRepository(conn)
	promoSvc, err := promos.NewService(promoRepo, promos.NewChecker(promoRepo, nil))
	if err != nil {
		return nil, fmt.Errorf("promo service: %w", err)
	}

	var cache cart.Cache = cart.NoopCache{}
	if redisClient != nil && cfg.FeatureFlags.CartCache {
		cache = cart.NewRedisCache(redisClient, cfg.Cart.CacheTTL)
	}

	cartSvc, err := cart.NewService(cart.ServiceParams{
		Repo:      cart.NewRepository(conn),
		Tx:        dbClient,
		Pricer:    calc,
		Promos:    promoSvc,
		PromoRepo: promoRepo,
		Cache:     cache,
		Logger:    logg,
		Metrics:   metrics.NewCartMetrics(reg),
		Locale:    cfg.Cart.DefaultLocale,
	})
	if err != nil {
		return nil, fmt.Errorf("cart service: %w", err)
	}

	return &Services{Pricing: calc, Promos: promoSvc, Cart: cartSvc}, nil
}
