package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	"github.com/angelmondragon/mixbar-backend/pkg/types"
)

// Modifier is a per-level priced adjustment. MaxLevel nil means unbounded.
type Modifier struct {
	ID        int64               `gorm:"column:id;primaryKey;autoIncrement"`
	Type      enums.ModifierType  `gorm:"column:type;not null"`
	IsActive  bool                `gorm:"column:is_active;not null"`
	Price     decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	MaxLevel  *int                `gorm:"column:max_level"`
	Name      types.LocalizedText `gorm:"column:name;type:jsonb;serializer:json;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
