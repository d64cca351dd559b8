package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	"github.com/angelmondragon/mixbar-backend/pkg/types"
)

// MixConfiguration is a base, a set of leveled modifiers and optional extras.
type MixConfiguration struct {
	BaseID       *int64 `json:"base_id,omitempty"`
	BuilderID    *int64 `json:"builder_id,omitempty"`
	MixBuilderID *int64 `json:"mix_builder_id,omitempty"`
	// BasePrice is the deprecated raw-price path, used only without BaseID.
	BasePrice *decimal.Decimal    `json:"base_price,omitempty"`
	Modifiers []ModifierSelection `json:"modifiers,omitempty"`
	Extras    []int64             `json:"extras,omitempty"`
}

// Builder returns the builder scope; builder_id wins over mix_builder_id.
func (c MixConfiguration) Builder() *int64 {
	if c.BuilderID != nil {
		return c.BuilderID
	}
	return c.MixBuilderID
}

// ModifierSelection picks a modifier; a nil Level means 1, an explicit 0 is kept.
type ModifierSelection struct {
	ID    int64 `json:"id"`
	Level *int  `json:"level,omitempty"`
}

// AddonSelection attaches a modifier to a regular product.
type AddonSelection struct {
	ModifierID int64 `json:"modifier_id"`
	Level      *int  `json:"level,omitempty"`
}

// Result is a complete pricing outcome. It is never partially filled.
type Result struct {
	Total     decimal.Decimal
	Breakdown []types.BreakdownLine

	mix     *types.MixSnapshot
	product *types.ProductSnapshot
}

// Snapshot freezes the resolved configuration for storage on a cart item.
func (r *Result) Snapshot(itemType enums.CartItemType) types.ConfigurationSnapshot {
	snap := types.ConfigurationSnapshot{
		SchemaVersion: types.ConfigurationSchemaVersion,
		ItemType:      itemType,
		Breakdown:     append([]types.BreakdownLine(nil), r.Breakdown...),
		Total:         r.Total,
	}
	if itemType.IsMix() {
		snap.Mix = r.mix
	} else {
		snap.Product = r.product
	}
	return snap
}

func effectiveLevel(level *int) int {
	if level == nil {
		return 1
	}
	return *level
}
