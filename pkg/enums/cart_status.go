package enums

import "fmt"

// CartStatus is never stored. It is derived from carts.abandoned_at and
// reported on cart views and error details.
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusAbandoned CartStatus = "abandoned"
)

// CartStatusFor maps the abandoned marker to a status.
func CartStatusFor(abandoned bool) CartStatus {
	if abandoned {
		return CartStatusAbandoned
	}
	return CartStatusActive
}

// IsTerminal reports whether no further transition is allowed.
func (c CartStatus) IsTerminal() bool {
	return c == CartStatusAbandoned
}

func (c CartStatus) IsValid() bool {
	switch c {
	case CartStatusActive, CartStatusAbandoned:
		return true
	}
	return false
}

// UnmarshalText rejects unknown statuses when decoding filters or payloads.
func (c *CartStatus) UnmarshalText(raw []byte) error {
	status := CartStatus(raw)
	if !status.IsValid() {
		return fmt.Errorf("invalid cart status %q", raw)
	}
	*c = status
	return nil
}
