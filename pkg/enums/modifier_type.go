package enums

import "fmt"

// ModifierType groups modifiers by what they change in a drink.
type ModifierType string

const (
	ModifierTypeSweetness ModifierType = "sweetness"
	ModifierTypeFizz      ModifierType = "fizz"
	ModifierTypeCaffeine  ModifierType = "caffeine"
	ModifierTypeFlavor    ModifierType = "flavor"
	ModifierTypeExtra     ModifierType = "extra"
)

var validModifierTypes = []ModifierType{
	ModifierTypeSweetness,
	ModifierTypeFizz,
	ModifierTypeCaffeine,
	ModifierTypeFlavor,
	ModifierTypeExtra,
}

// String implements fmt.Stringer.
func (t ModifierType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ModifierType.
func (t ModifierType) IsValid() bool {
	for _, candidate := range validModifierTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseModifierType converts raw input into a ModifierType.
func ParseModifierType(value string) (ModifierType, error) {
	for _, candidate := range validModifierTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid modifier type %q", value)
}
