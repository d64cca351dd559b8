package enums

import "fmt"

// ProductKind distinguishes sellable products from mix foundations.
type ProductKind string

const (
	ProductKindRegular ProductKind = "regular"
	// ProductKindMixBase is only usable as the base of a mix configuration.
	ProductKindMixBase ProductKind = "mix_base"
)

var validProductKinds = []ProductKind{
	ProductKindRegular,
	ProductKindMixBase,
}

// String implements fmt.Stringer.
func (k ProductKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known ProductKind.
func (k ProductKind) IsValid() bool {
	for _, candidate := range validProductKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseProductKind converts raw input into a ProductKind.
func ParseProductKind(value string) (ProductKind, error) {
	for _, candidate := range validProductKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product kind %q", value)
}
