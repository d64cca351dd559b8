package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mixbar-backend/pkg/enums"
)

// Cart is owned by exactly one of CustomerID or SessionID within a store.
// Subtotal, Discount and Total are written only by recalculation.
type Cart struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID  *uuid.UUID      `gorm:"column:customer_id;type:uuid"`
	SessionID   *string         `gorm:"column:session_id"`
	StoreID     uuid.UUID       `gorm:"column:store_id;type:uuid;not null"`
	PromoCodeID *uuid.UUID      `gorm:"column:promo_code_id;type:uuid"`
	PromoCode   *PromoCode      `gorm:"foreignKey:PromoCodeID"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount    decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	AbandonedAt *time.Time      `gorm:"column:abandoned_at"`
	Items       []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// IsAbandoned reports whether the cart reached its terminal state.
func (c *Cart) IsAbandoned() bool {
	return c != nil && c.AbandonedAt != nil
}

// Status derives the lifecycle state from AbandonedAt.
func (c *Cart) Status() enums.CartStatus {
	return enums.CartStatusFor(c.IsAbandoned())
}
