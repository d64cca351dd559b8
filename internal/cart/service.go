package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/angelmondragon/mixbar-backend/internal/pricing"
	"github.com/angelmondragon/mixbar-backend/internal/promos"
	pkgdb "github.com/angelmondragon/mixbar-backend/pkg/db"
	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
	"github.com/angelmondragon/mixbar-backend/pkg/logger"
	"github.com/angelmondragon/mixbar-backend/pkg/metrics"
	"github.com/angelmondragon/mixbar-backend/pkg/types"
)

const (
	defaultMixName        = "Custom Mix"
	defaultCreatorMixName = "Creator Mix"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type itemPricer interface {
	PriceMixConfiguration(ctx context.Context, cfg pricing.MixConfiguration) (*pricing.Result, error)
	PriceProduct(ctx context.Context, productID int64, addons []pricing.AddonSelection) (*models.Product, *pricing.Result, error)
}

type promoResolver interface {
	Lookup(ctx context.Context, code string) (*models.PromoCode, error)
	CheckEligibility(ctx context.Context, promo *models.PromoCode, customerID *uuid.UUID, orderAmount decimal.Decimal) error
}

// ServiceParams wires the cart service.
type ServiceParams struct {
	Repo      CartRepository
	Tx        txRunner
	Pricer    itemPricer
	Promos    promoResolver
	PromoRepo *promos.Repository
	Cache     Cache
	Logger    *logger.Logger
	Metrics   *metrics.CartMetrics
	Locale    string
}

// Service is the caller-facing cart workflow: price, then mutate and
// recalculate under the cart lock, then invalidate the read cache.
type Service struct {
	repo      CartRepository
	tx        txRunner
	pricer    itemPricer
	promos    promoResolver
	promoRepo *promos.Repository
	cache     Cache
	logg      *logger.Logger
	metrics   *metrics.CartMetrics
	locale    string
	reads     singleflight.Group
	now       func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(p ServiceParams) (*Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Pricer == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if p.Promos == nil {
		return nil, fmt.Errorf("promo service required")
	}
	if p.PromoRepo == nil {
		return nil, fmt.Errorf("promo repository required")
	}
	if p.Cache == nil {
		p.Cache = NoopCache{}
	}
	if strings.TrimSpace(p.Locale) == "" {
		p.Locale = types.DefaultLocale
	}
	return &Service{
		repo:      p.Repo,
		tx:        p.Tx,
		pricer:    p.Pricer,
		promos:    p.Promos,
		promoRepo: p.PromoRepo,
		cache:     p.Cache,
		logg:      p.Logger,
		metrics:   p.Metrics,
		locale:    p.Locale,
		now:       time.Now,
	}, nil
}

// AddMixInput adds a priced mix configuration.
type AddMixInput struct {
	Configuration pricing.MixConfiguration
	Quantity      int
	Name          string
}

// AddProductInput adds a regular product with addons.
type AddProductInput struct {
	ProductID int64
	Addons    []pricing.AddonSelection
	Quantity  int
}

// GetActiveCart returns the identity's active cart, creating it when absent.
// Reads go through the cache and never take the cart lock.
func (s *Service) GetActiveCart(ctx context.Context, identity Identity, storeID uuid.UUID) (*models.Cart, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	if cached, err := s.cache.Get(ctx, identity, storeID); err == nil {
		s.metrics.CacheLookup(true)
		return cached, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		s.warn(ctx, "cart.cache_read_failed", err)
	}
	s.metrics.CacheLookup(false)

	kind, id := identity.key()
	flightKey := storeID.String() + ":" + kind + ":" + id
	v, err, _ := s.reads.Do(flightKey, func() (any, error) {
		cartID, err := s.ensureActiveCart(ctx, identity, storeID)
		if err != nil {
			return nil, err
		}
		cart, err := s.load(ctx, cartID)
		if err != nil {
			return nil, err
		}
		s.fill(ctx, identity, storeID, cart)
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Cart), nil
}

// AddMixItem prices a mix configuration and appends it to the active cart.
func (s *Service) AddMixItem(ctx context.Context, identity Identity, storeID uuid.UUID, input AddMixInput) (*models.Cart, *models.CartItem, error) {
	return s.addMix(ctx, identity, storeID, enums.CartItemTypeMix, defaultMixName, input)
}

// AddCreatorMixItem prices a creator mix and appends it to the active cart.
func (s *Service) AddCreatorMixItem(ctx context.Context, identity Identity, storeID uuid.UUID, input AddMixInput) (*models.Cart, *models.CartItem, error) {
	return s.addMix(ctx, identity, storeID, enums.CartItemTypeCreatorMix, defaultCreatorMixName, input)
}

func (s *Service) addMix(ctx context.Context, identity Identity, storeID uuid.UUID, itemType enums.CartItemType, fallbackName string, input AddMixInput) (*models.Cart, *models.CartItem, error) {
	if err := validateQuantity(input.Quantity); err != nil {
		return nil, nil, err
	}
	result, err := s.pricer.PriceMixConfiguration(ctx, input.Configuration)
	if err != nil {
		return nil, nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = mixName(result, fallbackName)
	}
	payload := ItemPayload{
		ItemType:      itemType,
		ProductID:     input.Configuration.BaseID,
		Name:          name,
		Price:         result.Total,
		Quantity:      input.Quantity,
		Configuration: result.Snapshot(itemType),
	}
	return s.addItem(ctx, identity, storeID, payload)
}

// AddProductItem prices a regular product with addons and appends it.
func (s *Service) AddProductItem(ctx context.Context, identity Identity, storeID uuid.UUID, input AddProductInput) (*models.Cart, *models.CartItem, error) {
	if err := validateQuantity(input.Quantity); err != nil {
		return nil, nil, err
	}
	product, result, err := s.pricer.PriceProduct(ctx, input.ProductID, input.Addons)
	if err != nil {
		return nil, nil, err
	}

	productID := product.ID
	payload := ItemPayload{
		ItemType:      enums.CartItemTypeProduct,
		ProductID:     &productID,
		Name:          product.Name.Get(s.locale),
		Price:         result.Total,
		Quantity:      input.Quantity,
		Configuration: result.Snapshot(enums.CartItemTypeProduct),
	}
	return s.addItem(ctx, identity, storeID, payload)
}

func (s *Service) addItem(ctx context.Context, identity Identity, storeID uuid.UUID, payload ItemPayload) (*models.Cart, *models.CartItem, error) {
	var item *models.CartItem
	cart, err := s.mutate(ctx, identity, storeID, "add_item", func(ctx context.Context, agg *Aggregate, cart *models.Cart) error {
		created, err := agg.AddItem(ctx, cart, payload)
		if err != nil {
			return err
		}
		item = created
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return cart, item, nil
}

// UpdateItemQuantity changes the quantity of an item on the active cart.
func (s *Service) UpdateItemQuantity(ctx context.Context, identity Identity, storeID, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	return s.mutate(ctx, identity, storeID, "update_item", func(ctx context.Context, agg *Aggregate, cart *models.Cart) error {
		return agg.UpdateItemQuantity(ctx, cart, itemID, quantity)
	})
}

// RemoveItem detaches an item from the active cart.
func (s *Service) RemoveItem(ctx context.Context, identity Identity, storeID, itemID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, identity, storeID, "remove_item", func(ctx context.Context, agg *Aggregate, cart *models.Cart) error {
		return agg.RemoveItem(ctx, cart, itemID)
	})
}

// ApplyPromo resolves the code, checks eligibility against the locked cart's
// current subtotal and links it.
func (s *Service) ApplyPromo(ctx context.Context, identity Identity, storeID uuid.UUID, code string) (*models.Cart, error) {
	promo, err := s.promos.Lookup(ctx, code)
	if err != nil {
		s.logPromoRejection(ctx, code, err)
		return nil, err
	}
	cart, err := s.mutate(ctx, identity, storeID, "apply_promo", func(ctx context.Context, agg *Aggregate, cart *models.Cart) error {
		if err := s.promos.CheckEligibility(ctx, promo, identity.CustomerID, cart.Subtotal); err != nil {
			return err
		}
		return agg.ApplyPromoCode(ctx, cart, promo)
	})
	if err != nil {
		s.logPromoRejection(ctx, code, err)
		return nil, err
	}
	return cart, nil
}

// RemovePromo clears the promo link on the active cart.
func (s *Service) RemovePromo(ctx context.Context, identity Identity, storeID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, identity, storeID, "remove_promo", func(ctx context.Context, agg *Aggregate, cart *models.Cart) error {
		return agg.RemovePromoCode(ctx, cart)
	})
}

// Abandon marks the identity's active cart abandoned. Without an active cart
// it does nothing.
func (s *Service) Abandon(ctx context.Context, identity Identity, storeID uuid.UUID) (*models.Cart, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindActiveByIdentity(ctx, identity, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup active cart")
	}
	if _, err := s.AbandonCart(ctx, existing.ID); err != nil {
		return nil, err
	}
	return s.load(ctx, existing.ID)
}

// AbandonCart abandons the cart by id; repeated calls report false.
func (s *Service) AbandonCart(ctx context.Context, cartID uuid.UUID) (bool, error) {
	var (
		changed bool
		owner   *models.Cart
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		agg := s.aggregate(tx)
		cart, err := agg.repo.LockByID(ctx, cartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
		}
		owner = cart
		changed, err = agg.Abandon(ctx, cart)
		return err
	})
	if err != nil {
		return false, err
	}
	if changed {
		s.metrics.IncMutation("abandon")
		s.invalidate(ctx, identityOf(owner), owner.StoreID)
		if s.logg != nil {
			logCtx := s.logg.WithCartID(ctx, cartID.String())
			s.logg.Info(logCtx, "cart.abandoned")
		}
	}
	return changed, nil
}

// AbandonStale abandons active carts not touched since before. It returns
// the number of carts moved to abandoned.
func (s *Service) AbandonStale(ctx context.Context, before time.Time, limit int) (int, error) {
	ids, err := s.repo.ListStaleActive(ctx, before, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stale carts")
	}
	abandoned := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return abandoned, err
		}
		changed, err := s.AbandonCart(ctx, id)
		if err != nil {
			return abandoned, err
		}
		if changed {
			abandoned++
		}
	}
	return abandoned, nil
}

// Recalculate recomputes and persists the totals of a cart under its lock.
func (s *Service) Recalculate(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.aggregate(tx).Recalculate(ctx, cartID)
		return err
	})
	if err != nil {
		return nil, err
	}
	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !cart.IsAbandoned() {
		s.invalidate(ctx, identityOf(cart), cart.StoreID)
	}
	return cart, nil
}

type mutation func(ctx context.Context, agg *Aggregate, cart *models.Cart) error

// mutate runs fn and the following recalculation in one transaction whose
// first write-path statement is the cart row lock.
func (s *Service) mutate(ctx context.Context, identity Identity, storeID uuid.UUID, op string, fn mutation) (*models.Cart, error) {
	cartID, err := s.ensureActiveCart(ctx, identity, storeID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		agg := s.aggregate(tx)
		cart, err := agg.Lock(ctx, cartID)
		if err != nil {
			return err
		}
		if err := fn(ctx, agg, cart); err != nil {
			return err
		}
		_, err = agg.Recalculate(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncMutation(op)
	s.invalidate(ctx, identity, storeID)
	return s.load(ctx, cartID)
}

// ensureActiveCart finds or creates the active cart. A concurrent create for
// the same identity loses on the unique index and retries the lookup.
func (s *Service) ensureActiveCart(ctx context.Context, identity Identity, storeID uuid.UUID) (uuid.UUID, error) {
	var (
		cartID  uuid.UUID
		created bool
	)
	run := func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			cart, isNew, err := s.aggregate(tx).FindOrCreateActiveCart(ctx, identity, storeID)
			if err != nil {
				return err
			}
			cartID, created = cart.ID, isNew
			return nil
		})
	}
	err := run()
	if err != nil && pkgdb.IsUniqueViolation(err, "") {
		err = run()
	}
	if err != nil {
		return uuid.Nil, err
	}
	if created && s.logg != nil {
		customerID := ""
		if identity.CustomerID != nil {
			customerID = identity.CustomerID.String()
		}
		logCtx := s.logg.WithIdentity(s.logg.WithCartID(ctx, cartID.String()), customerID, identity.SessionID)
		logCtx = s.logg.WithStoreID(logCtx, storeID.String())
		s.logg.Info(logCtx, "cart.created")
	}
	return cartID, nil
}

func (s *Service) aggregate(tx *gorm.DB) *Aggregate {
	agg := NewAggregate(s.repo.WithTx(tx), s.promoRepo.WithTx(tx), s.metrics)
	agg.now = s.now
	return agg
}

func (s *Service) load(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

// fill caches a cart read from the database. A mutation committing between
// the read and the write would leave its invalidation behind the stale
// entry, so the row version is re-read afterwards and the entry dropped when
// it moved. Mutations committing after that re-read invalidate on their own.
func (s *Service) fill(ctx context.Context, identity Identity, storeID uuid.UUID, cart *models.Cart) {
	if err := s.cache.Set(ctx, identity, storeID, cart); err != nil {
		s.warn(ctx, "cart.cache_write_failed", err)
		return
	}
	current, err := s.repo.FindHeader(ctx, cart.ID)
	if err == nil && sameVersion(current, cart) {
		return
	}
	if err != nil {
		s.warn(ctx, "cart.cache_verify_failed", err)
	}
	s.invalidate(ctx, identity, storeID)
}

func sameVersion(a, b *models.Cart) bool {
	return a.UpdatedAt.Equal(b.UpdatedAt) && a.IsAbandoned() == b.IsAbandoned()
}

func (s *Service) invalidate(ctx context.Context, identity Identity, storeID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, identity, storeID); err != nil {
		s.warn(ctx, "cart.cache_invalidate_failed", err)
	}
}

func (s *Service) logPromoRejection(ctx context.Context, code string, err error) {
	if s.logg == nil {
		return
	}
	fields := map[string]any{"promo_code": strings.ToUpper(strings.TrimSpace(code))}
	if reason := promos.RejectionOf(err); reason != "" {
		fields["reason"] = string(reason)
	}
	if typed := pkgerrors.As(err); typed != nil {
		fields["error_code"] = string(typed.Code())
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), "promo.rejected")
}

func (s *Service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	return nil
}

// mixName prefers the resolved base line's label.
func mixName(result *pricing.Result, fallback string) string {
	for _, line := range result.Breakdown {
		if line.Type == enums.BreakdownTypeBase && line.ProductID != nil && strings.TrimSpace(line.Label) != "" {
			return line.Label
		}
	}
	return fallback
}

func identityOf(cart *models.Cart) Identity {
	if cart.CustomerID != nil {
		return CustomerIdentity(*cart.CustomerID)
	}
	if cart.SessionID != nil {
		return SessionIdentity(*cart.SessionID)
	}
	return Identity{}
}
