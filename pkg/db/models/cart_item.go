package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	"github.com/angelmondragon/mixbar-backend/pkg/types"
)

// CartItem holds a price snapshot frozen at add time. Only Quantity changes
// after creation.
type CartItem struct {
	ID            uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	CartID        uuid.UUID                   `gorm:"column:cart_id;type:uuid;not null"`
	ItemType      enums.CartItemType          `gorm:"column:item_type;not null"`
	ProductID     *int64                      `gorm:"column:product_id"`
	Name          string                      `gorm:"column:name;not null"`
	Price         decimal.Decimal             `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity      int                         `gorm:"column:quantity;not null"`
	Configuration types.ConfigurationSnapshot `gorm:"column:configuration;type:jsonb;serializer:json;not null"`
	CreatedAt     time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal is the unrounded price × quantity for this line.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
