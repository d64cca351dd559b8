package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	"github.com/angelmondragon/mixbar-backend/pkg/redis"
)

// ErrCacheMiss is returned when no cached cart exists for the key.
var ErrCacheMiss = errors.New("cart cache miss")

// Cache stores read-only snapshots of active carts. It is never consulted
// inside a mutation.
type Cache interface {
	Get(ctx context.Context, identity Identity, storeID uuid.UUID) (*models.Cart, error)
	Set(ctx context.Context, identity Identity, storeID uuid.UUID, cart *models.Cart) error
	Invalidate(ctx context.Context, identity Identity, storeID uuid.UUID) error
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(parts ...string) string
}

// RedisCache keeps JSON snapshots of carts in redis.
type RedisCache struct {
	store cacheStore
	ttl   time.Duration
}

var _ cacheStore = (*redis.Client)(nil)

// NewRedisCache builds a cache over the redis client.
func NewRedisCache(store cacheStore, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisCache{store: store, ttl: ttl}
}

func (c *RedisCache) key(identity Identity, storeID uuid.UUID) string {
	kind, id := identity.key()
	return c.store.CartKey(storeID.String(), kind, id)
}

func (c *RedisCache) Get(ctx context.Context, identity Identity, storeID uuid.UUID) (*models.Cart, error) {
	raw, err := c.store.Get(ctx, c.key(identity, storeID))
	if err != nil {
		if redis.IsNil(err) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var cart models.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode cached cart: %w", err)
	}
	return &cart, nil
}

func (c *RedisCache) Set(ctx context.Context, identity Identity, storeID uuid.UUID, cart *models.Cart) error {
	if cart == nil {
		return nil
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return c.store.Set(ctx, c.key(identity, storeID), payload, c.ttl)
}

func (c *RedisCache) Invalidate(ctx context.Context, identity Identity, storeID uuid.UUID) error {
	return c.store.Del(ctx, c.key(identity, storeID))
}

// NoopCache disables caching.
type NoopCache struct{}

func (NoopCache) Get(context.Context, Identity, uuid.UUID) (*models.Cart, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) Set(context.Context, Identity, uuid.UUID, *models.Cart) error { return nil }

func (NoopCache) Invalidate(context.Context, Identity, uuid.UUID) error { return nil }
