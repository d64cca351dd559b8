package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
	"github.com/angelmondragon/mixbar-backend/pkg/metrics"
	"github.com/angelmondragon/mixbar-backend/pkg/types"
)

// PromoLoader loads the promo linked to a cart.
type PromoLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.PromoCode, error)
}

// ItemPayload is an already priced line ready to be attached to a cart.
type ItemPayload struct {
	ItemType      enums.CartItemType
	ProductID     *int64
	Name          string
	Price         decimal.Decimal
	Quantity      int
	Configuration types.ConfigurationSnapshot
}

// Aggregate owns cart mutations. Build one per transaction with repositories
// bound to that transaction; Recalculate is the only writer of totals.
type Aggregate struct {
	repo    CartRepository
	promos  PromoLoader
	now     func() time.Time
	metrics *metrics.CartMetrics
}

// NewAggregate builds an aggregate over the repository.
func NewAggregate(repo CartRepository, promos PromoLoader, m *metrics.CartMetrics) *Aggregate {
	return &Aggregate{repo: repo, promos: promos, now: time.Now, metrics: m}
}

// FindOrCreateActiveCart returns the identity's active cart in the store,
// creating an empty one when none exists. created reports which happened.
func (a *Aggregate) FindOrCreateActiveCart(ctx context.Context, identity Identity, storeID uuid.UUID) (*models.Cart, bool, error) {
	if err := identity.Validate(); err != nil {
		return nil, false, err
	}
	if storeID == uuid.Nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	existing, err := a.repo.FindActiveByIdentity(ctx, identity, storeID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup active cart")
	}

	cart := &models.Cart{
		ID:         uuid.New(),
		CustomerID: identity.CustomerID,
		StoreID:    storeID,
		Subtotal:   decimal.Zero,
		Discount:   decimal.Zero,
		Total:      decimal.Zero,
	}
	if identity.CustomerID == nil {
		session := identity.SessionID
		cart.SessionID = &session
	}
	if err := a.repo.Create(ctx, cart); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return cart, true, nil
}

// Lock takes the per-cart row lock and rejects abandoned carts.
func (a *Aggregate) Lock(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := a.repo.LockByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
	}
	if cart.IsAbandoned() {
		return nil, abandonedError(cart)
	}
	return cart, nil
}

// AddItem attaches a priced line. It neither prices nor recalculates.
func (a *Aggregate) AddItem(ctx context.Context, cart *models.Cart, payload ItemPayload) (*models.CartItem, error) {
	if err := ensureMutable(cart); err != nil {
		return nil, err
	}
	if !payload.ItemType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item type")
	}
	if payload.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if payload.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if strings.TrimSpace(payload.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if err := payload.Configuration.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid configuration snapshot")
	}
	if payload.Configuration.ItemType != payload.ItemType {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "configuration snapshot does not match item type")
	}

	item := &models.CartItem{
		ID:            uuid.New(),
		CartID:        cart.ID,
		ItemType:      payload.ItemType,
		ProductID:     payload.ProductID,
		Name:          strings.TrimSpace(payload.Name),
		Price:         payload.Price.Round(2),
		Quantity:      payload.Quantity,
		Configuration: payload.Configuration,
	}
	if err := a.repo.CreateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
	}
	return item, nil
}

// UpdateItemQuantity changes an item's quantity; the price snapshot is kept.
func (a *Aggregate) UpdateItemQuantity(ctx context.Context, cart *models.Cart, itemID uuid.UUID, quantity int) error {
	if err := ensureMutable(cart); err != nil {
		return err
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	ok, err := a.repo.UpdateItemQuantity(ctx, cart.ID, itemID, quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// RemoveItem detaches an item from the cart.
func (a *Aggregate) RemoveItem(ctx context.Context, cart *models.Cart, itemID uuid.UUID) error {
	if err := ensureMutable(cart); err != nil {
		return err
	}
	ok, err := a.repo.DeleteItem(ctx, cart.ID, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// ApplyPromoCode links the promo. The discount is computed by Recalculate.
func (a *Aggregate) ApplyPromoCode(ctx context.Context, cart *models.Cart, promo *models.PromoCode) error {
	if err := ensureMutable(cart); err != nil {
		return err
	}
	if promo == nil || promo.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}
	if err := a.repo.SetPromo(ctx, cart.ID, &promo.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link promo code")
	}
	cart.PromoCodeID = &promo.ID
	cart.PromoCode = promo
	return nil
}

// RemovePromoCode clears the promo link.
func (a *Aggregate) RemovePromoCode(ctx context.Context, cart *models.Cart) error {
	if err := ensureMutable(cart); err != nil {
		return err
	}
	if err := a.repo.SetPromo(ctx, cart.ID, nil); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unlink promo code")
	}
	cart.PromoCodeID = nil
	cart.PromoCode = nil
	return nil
}

// Abandon moves the cart to its terminal state. Repeated calls are no-ops.
func (a *Aggregate) Abandon(ctx context.Context, cart *models.Cart) (bool, error) {
	if cart == nil {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	if cart.IsAbandoned() {
		return false, nil
	}
	at := a.now().UTC()
	changed, err := a.repo.MarkAbandoned(ctx, cart.ID, at)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "abandon cart")
	}
	if changed {
		cart.AbandonedAt = &at
	}
	return changed, nil
}

// Recalculate locks the cart, reloads its items and promo, and persists the
// derived totals in one UPDATE. Calling it twice yields the same totals.
func (a *Aggregate) Recalculate(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	start := a.now()
	cart, err := a.repo.LockByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
	}

	items, err := a.repo.ListItems(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}

	var promo *models.PromoCode
	if cart.PromoCodeID != nil && a.promos != nil {
		promo, err = a.promos.FindByID(ctx, *cart.PromoCodeID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load linked promo")
		}
	}

	totals := ComputeTotals(items, promo)
	if err := a.repo.UpdateTotals(ctx, cartID, totals); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart totals")
	}

	cart.Items = items
	cart.PromoCode = promo
	cart.Subtotal = totals.Subtotal
	cart.Discount = totals.Discount
	cart.Total = totals.Total
	a.metrics.ObserveRecalculate(a.now().Sub(start))
	return cart, nil
}

func ensureMutable(cart *models.Cart) error {
	if cart == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	if cart.IsAbandoned() {
		return abandonedError(cart)
	}
	return nil
}

func abandonedError(cart *models.Cart) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "cart has been abandoned").
		WithDetails(map[string]any{"cart_id": cart.ID.String(), "status": enums.CartStatusAbandoned})
}
