package types

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mixbar-backend/pkg/enums"
)

// ConfigurationSchemaVersion is bumped whenever the snapshot layout changes.
// Stored snapshots are never rewritten; readers switch on SchemaVersion.
const ConfigurationSchemaVersion = 1

// ConfigurationSnapshot is the frozen, fully-resolved input that produced a
// cart item's price. It is kept for receipts and audit and never re-validated
// against the live catalog.
type ConfigurationSnapshot struct {
	SchemaVersion int                `json:"schema_version"`
	ItemType      enums.CartItemType `json:"item_type"`
	Mix           *MixSnapshot       `json:"mix,omitempty"`
	Product       *ProductSnapshot   `json:"product,omitempty"`
	Breakdown     []BreakdownLine    `json:"breakdown"`
	Total         decimal.Decimal    `json:"total"`
}

// MixSnapshot records a mix or creator_mix configuration.
type MixSnapshot struct {
	BaseID    *int64           `json:"base_id,omitempty"`
	BuilderID *int64           `json:"builder_id,omitempty"`
	BasePrice *decimal.Decimal `json:"base_price,omitempty"`
	Modifiers []LevelSelection `json:"modifiers"`
	Extras    []ExtraSelection `json:"extras"`
}

// ProductSnapshot records a regular product with its addons.
type ProductSnapshot struct {
	ProductID int64            `json:"product_id"`
	Addons    []LevelSelection `json:"addons"`
}

// LevelSelection is a modifier id with its effective level.
type LevelSelection struct {
	ID    int64 `json:"id"`
	Level int   `json:"level"`
}

// ExtraSelection records what an extra id resolved to at pricing time.
type ExtraSelection struct {
	ID         int64  `json:"id"`
	ResolvedAs string `json:"resolved_as"`
}

// BreakdownLine is one priced contribution of a configuration.
type BreakdownLine struct {
	Label      string              `json:"label"`
	Amount     decimal.Decimal     `json:"amount"`
	Type       enums.BreakdownType `json:"type"`
	ModifierID *int64              `json:"modifier_id,omitempty"`
	ProductID  *int64              `json:"product_id,omitempty"`
	Level      *int                `json:"level,omitempty"`
}

// Validate checks the snapshot is tagged consistently with its payload.
func (s ConfigurationSnapshot) Validate() error {
	if s.SchemaVersion <= 0 {
		return fmt.Errorf("configuration snapshot: schema version required")
	}
	if !s.ItemType.IsValid() {
		return fmt.Errorf("configuration snapshot: invalid item type %q", s.ItemType)
	}
	if s.ItemType.IsMix() {
		if s.Mix == nil || s.Product != nil {
			return fmt.Errorf("configuration snapshot: %s requires a mix payload", s.ItemType)
		}
		return nil
	}
	if s.Product == nil || s.Mix != nil {
		return fmt.Errorf("configuration snapshot: %s requires a product payload", s.ItemType)
	}
	return nil
}
