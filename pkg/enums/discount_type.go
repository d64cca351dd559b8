package enums

import "fmt"

// DiscountType describes how a promo discount value is interpreted.
type DiscountType string

const (
	// DiscountTypePercentage treats the value as a percent of the subtotal.
	DiscountTypePercentage DiscountType = "percentage"
	// DiscountTypeFixed treats the value as a flat amount capped at the subtotal.
	DiscountTypeFixed DiscountType = "fixed"
)

var validDiscountTypes = []DiscountType{
	DiscountTypePercentage,
	DiscountTypeFixed,
}

// String implements fmt.Stringer.
func (t DiscountType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known DiscountType.
func (t DiscountType) IsValid() bool {
	for _, candidate := range validDiscountTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseDiscountType converts raw input into a DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	for _, candidate := range validDiscountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}
