package cart

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
)

// Identity owns a cart: a customer id or an anonymous session id, never both.
type Identity struct {
	CustomerID *uuid.UUID
	SessionID  string
}

// CustomerIdentity identifies a signed-in customer.
func CustomerIdentity(id uuid.UUID) Identity {
	return Identity{CustomerID: &id}
}

// SessionIdentity identifies an anonymous session.
func SessionIdentity(sessionID string) Identity {
	return Identity{SessionID: strings.TrimSpace(sessionID)}
}

// Validate enforces that exactly one identity is present.
func (i Identity) Validate() error {
	hasCustomer := i.CustomerID != nil && *i.CustomerID != uuid.Nil
	hasSession := strings.TrimSpace(i.SessionID) != ""
	switch {
	case hasCustomer && hasSession:
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id and session id are mutually exclusive")
	case !hasCustomer && !hasSession:
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id or session id is required")
	}
	return nil
}

// IsAnonymous reports whether the cart belongs to a session.
func (i Identity) IsAnonymous() bool {
	return i.CustomerID == nil
}

// key is a stable string for cache keys and logs.
func (i Identity) key() (kind, id string) {
	if i.CustomerID != nil {
		return "c", i.CustomerID.String()
	}
	return "s", i.SessionID
}
