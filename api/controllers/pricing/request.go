package pricing

import (
	"github.com/shopspring/decimal"

	pricingsvc "github.com/angelmondragon/mixbar-backend/internal/pricing"
)

// MixRequest is the wire form of a mix configuration.
type MixRequest struct {
	BaseID       *int64            `json:"base_id,omitempty" validate:"omitempty,gt=0"`
	BuilderID    *int64            `json:"builder_id,omitempty" validate:"omitempty,gt=0"`
	MixBuilderID *int64            `json:"mix_builder_id,omitempty" validate:"omitempty,gt=0"`
	BasePrice    *decimal.Decimal  `json:"base_price,omitempty"`
	Modifiers    []ModifierRequest `json:"modifiers,omitempty" validate:"dive"`
	Extras       []int64           `json:"extras,omitempty" validate:"dive,gt=0"`
}

type ModifierRequest struct {
	ID    int64 `json:"id" validate:"required,gt=0"`
	Level *int  `json:"level,omitempty"`
}

// ProductRequest carries the addons for a product quote.
type ProductRequest struct {
	Addons []AddonRequest `json:"addons,omitempty" validate:"dive"`
}

type AddonRequest struct {
	ModifierID int64 `json:"modifier_id" validate:"required,gt=0"`
	Level      *int  `json:"level,omitempty"`
}

// ToConfiguration maps the request onto the calculator input. Level bounds
// are left to the calculator so its error kinds reach the client.
func (m MixRequest) ToConfiguration() pricingsvc.MixConfiguration {
	cfg := pricingsvc.MixConfiguration{
		BaseID:       m.BaseID,
		BuilderID:    m.BuilderID,
		MixBuilderID: m.MixBuilderID,
		BasePrice:    m.BasePrice,
		Extras:       append([]int64(nil), m.Extras...),
	}
	for _, mod := range m.Modifiers {
		cfg.Modifiers = append(cfg.Modifiers, pricingsvc.ModifierSelection{ID: mod.ID, Level: mod.Level})
	}
	return cfg
}

// ToAddons maps the request onto calculator addon selections.
func ToAddons(addons []AddonRequest) []pricingsvc.AddonSelection {
	out := make([]pricingsvc.AddonSelection, 0, len(addons))
	for _, a := range addons {
		out = append(out, pricingsvc.AddonSelection{ModifierID: a.ModifierID, Level: a.Level})
	}
	return out
}
