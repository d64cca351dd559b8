package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mixbar-backend/pkg/enums"
)

// PromoCode is read-only to the cart engine except for UsedCount, which is
// only advanced by redemption at order creation.
type PromoCode struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code               string             `gorm:"column:code;not null"`
	DiscountType       enums.DiscountType `gorm:"column:discount_type;not null"`
	DiscountValue      decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	ValidFrom          time.Time          `gorm:"column:valid_from;not null"`
	ValidTo            time.Time          `gorm:"column:valid_to;not null"`
	IsActive           bool               `gorm:"column:is_active;not null"`
	UsageLimit         *int               `gorm:"column:usage_limit"`
	PerCustomerLimit   *int               `gorm:"column:per_customer_limit"`
	UsedCount          int                `gorm:"column:used_count;not null"`
	MinimumOrderAmount decimal.Decimal    `gorm:"column:minimum_order_amount;type:numeric(12,2);not null"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// PromoUsage records one redemption of a promo by a customer.
type PromoUsage struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	PromoCodeID uuid.UUID  `gorm:"column:promo_code_id;type:uuid;not null"`
	CustomerID  uuid.UUID  `gorm:"column:customer_id;type:uuid;not null"`
	OrderID     *uuid.UUID `gorm:"column:order_id;type:uuid"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
