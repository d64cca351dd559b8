package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart aggregate.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindActiveByIdentity(ctx context.Context, identity Identity, storeID uuid.UUID) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	FindHeader(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (bool, error)
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) (bool, error)
	SetPromo(ctx context.Context, cartID uuid.UUID, promoID *uuid.UUID) error
	MarkAbandoned(ctx context.Context, cartID uuid.UUID, at time.Time) (bool, error)
	UpdateTotals(ctx context.Context, cartID uuid.UUID, totals Totals) error
	ListStaleActive(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
}

// Repository is the gorm-backed CartRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindActiveByIdentity returns the newest non-abandoned cart for the identity
// in the store.
func (r *Repository) FindActiveByIdentity(ctx context.Context, identity Identity, storeID uuid.UUID) (*models.Cart, error) {
	q := r.db.WithContext(ctx).Where("store_id = ? AND abandoned_at IS NULL", storeID)
	if identity.CustomerID != nil {
		q = q.Where("customer_id = ?", *identity.CustomerID)
	} else {
		q = q.Where("session_id = ? AND customer_id IS NULL", identity.SessionID)
	}
	var cart models.Cart
	if err := q.Order("created_at DESC").First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByID loads the cart with its items and linked promo.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("PromoCode").
		First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindHeader loads only the cart row's version columns.
func (r *Repository) FindHeader(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Select("id", "updated_at", "abandoned_at").
		First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockByID selects the cart row FOR UPDATE. It must run inside a transaction.
func (r *Repository) LockByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(cart).Error
}

// ListItems returns the items currently attached to the cart.
func (r *Repository) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItemQuantity changes only the quantity column. It reports false when
// the item does not belong to the cart.
func (r *Repository) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now().UTC()})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{})
	return res.RowsAffected > 0, res.Error
}

// SetPromo links or, with a nil id, unlinks the cart's promo.
func (r *Repository) SetPromo(ctx context.Context, cartID uuid.UUID, promoID *uuid.UUID) error {
	var value any = gorm.Expr("NULL")
	if promoID != nil {
		value = *promoID
	}
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("promo_code_id", value).Error
}

// MarkAbandoned sets abandoned_at once; later calls report false.
func (r *Repository) MarkAbandoned(ctx context.Context, cartID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND abandoned_at IS NULL", cartID).
		Updates(map[string]any{"abandoned_at": at, "updated_at": at})
	return res.RowsAffected > 0, res.Error
}

// UpdateTotals writes subtotal, discount and total in a single statement.
func (r *Repository) UpdateTotals(ctx context.Context, cartID uuid.UUID, totals Totals) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Updates(map[string]any{
			"subtotal":   totals.Subtotal,
			"discount":   totals.Discount,
			"total":      totals.Total,
			"updated_at": time.Now().UTC(),
		}).Error
}

// ListStaleActive returns ids of active carts untouched since before.
func (r *Repository) ListStaleActive(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	q := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("abandoned_at IS NULL AND updated_at < ?", before).
		Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Pluck("id", &ids).Error
	return ids, err
}
