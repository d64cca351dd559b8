package cart

import (
	pricingctl "github.com/angelmondragon/mixbar-backend/api/controllers/pricing"
	"github.com/angelmondragon/mixbar-backend/api/validators"
	cartsvc "github.com/angelmondragon/mixbar-backend/internal/cart"
	"github.com/angelmondragon/mixbar-backend/pkg/enums"
)

const maxItemNameLength = 120

// AddItemRequest adds one line. Product lines use product_id and addons;
// mix lines use configuration.
type AddItemRequest struct {
	ItemType      enums.CartItemType        `json:"item_type" validate:"required,oneof=product mix creator_mix"`
	Quantity      *int                      `json:"quantity,omitempty"`
	Name          string                    `json:"name,omitempty" validate:"max=120"`
	ProductID     *int64                    `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	Addons        []pricingctl.AddonRequest `json:"addons,omitempty" validate:"dive"`
	Configuration *pricingctl.MixRequest    `json:"configuration,omitempty"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

type ApplyPromoRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// quantity defaults to one; an explicit value is passed through for the
// service to reject.
func (r AddItemRequest) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

func (r AddItemRequest) toMixInput() cartsvc.AddMixInput {
	input := cartsvc.AddMixInput{
		Quantity: r.quantity(),
		Name:     validators.SanitizeString(r.Name, maxItemNameLength),
	}
	if r.Configuration != nil {
		input.Configuration = r.Configuration.ToConfiguration()
	}
	return input
}

func (r AddItemRequest) toProductInput() cartsvc.AddProductInput {
	input := cartsvc.AddProductInput{
		Addons:   pricingctl.ToAddons(r.Addons),
		Quantity: r.quantity(),
	}
	if r.ProductID != nil {
		input.ProductID = *r.ProductID
	}
	return input
}
