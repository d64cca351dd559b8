package enums

import "fmt"

// CartItemType identifies how a cart line was configured.
type CartItemType string

const (
	CartItemTypeProduct    CartItemType = "product"
	CartItemTypeMix        CartItemType = "mix"
	CartItemTypeCreatorMix CartItemType = "creator_mix"
)

var validCartItemTypes = []CartItemType{
	CartItemTypeProduct,
	CartItemTypeMix,
	CartItemTypeCreatorMix,
}

// String implements fmt.Stringer.
func (t CartItemType) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t CartItemType) IsValid() bool {
	for _, candidate := range validCartItemTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsMix reports whether the line was priced as a mix configuration.
func (t CartItemType) IsMix() bool {
	return t == CartItemTypeMix || t == CartItemTypeCreatorMix
}

// ParseCartItemType converts raw input into a CartItemType.
func ParseCartItemType(value string) (CartItemType, error) {
	for _, candidate := range validCartItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart item type %q", value)
}
