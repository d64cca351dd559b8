package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	"github.com/angelmondragon/mixbar-backend/pkg/types"
)

// Product is a catalog item; mix_base products are only sold inside mixes.
type Product struct {
	ID          int64               `gorm:"column:id;primaryKey;autoIncrement"`
	Kind        enums.ProductKind   `gorm:"column:kind;not null"`
	IsActive    bool                `gorm:"column:is_active;not null"`
	BasePrice   decimal.Decimal     `gorm:"column:base_price;type:numeric(12,2);not null"`
	Name        types.LocalizedText `gorm:"column:name;type:jsonb;serializer:json;not null"`
	Description types.LocalizedText `gorm:"column:description;type:jsonb;serializer:json"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
