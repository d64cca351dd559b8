package enums

import "fmt"

// BreakdownType tags a priced contribution.
type BreakdownType string

const (
	BreakdownTypeBase     BreakdownType = "base"
	BreakdownTypeModifier BreakdownType = "modifier"
	BreakdownTypeExtra    BreakdownType = "extra"
	BreakdownTypeProduct  BreakdownType = "product"
	BreakdownTypeAddon    BreakdownType = "addon"
)

var validBreakdownTypes = []BreakdownType{
	BreakdownTypeBase,
	BreakdownTypeModifier,
	BreakdownTypeExtra,
	BreakdownTypeProduct,
	BreakdownTypeAddon,
}

func (t BreakdownType) String() string {
	return string(t)
}

func (t BreakdownType) IsValid() bool {
	for _, candidate := range validBreakdownTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseBreakdownType converts raw input into a BreakdownType.
func ParseBreakdownType(value string) (BreakdownType, error) {
	for _, candidate := range validBreakdownTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid breakdown type %q", value)
}
