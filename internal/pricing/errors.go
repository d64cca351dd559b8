package pricing

import (
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
)

// Kind names a configuration validation failure.
type Kind string

const (
	KindMissingBase              Kind = "MISSING_BASE"
	KindBaseNotFoundOrInvalid    Kind = "BASE_NOT_FOUND_OR_INVALID"
	KindBaseNotAssignedToBuilder Kind = "BASE_NOT_ASSIGNED_TO_BUILDER"
	KindNegativeBasePrice        Kind = "NEGATIVE_BASE_PRICE"
	KindModifierNotFound         Kind = "MODIFIER_NOT_FOUND"
	KindNegativeLevel            Kind = "NEGATIVE_LEVEL"
	KindLevelExceedsMax          Kind = "LEVEL_EXCEEDS_MAX"
	KindExtraNotFound            Kind = "EXTRA_NOT_FOUND"
	KindInactiveProduct          Kind = "INACTIVE_PRODUCT"
	KindAddonNotAssigned         Kind = "ADDON_NOT_ASSIGNED"
	KindLevelOutOfRange          Kind = "LEVEL_OUT_OF_RANGE"
)

// ConfigError is a client-correctable configuration failure.
type ConfigError struct {
	Kind    Kind
	Message string
	// ID is the offending product or modifier id, when there is one.
	ID *int64
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// configError builds the coded error returned by the calculator. The
// ConfigError stays reachable through errors.As.
func configError(kind Kind, id *int64, format string, args ...any) error {
	cause := &ConfigError{Kind: kind, Message: fmt.Sprintf(format, args...), ID: id}
	details := map[string]any{"reason": string(kind)}
	if id != nil {
		details["id"] = *id
	}
	return pkgerrors.Wrap(pkgerrors.CodeInvalidConfig, cause, cause.Message).WithDetails(details)
}

// KindOf extracts the configuration error kind from err.
func KindOf(err error) (Kind, bool) {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) && cfgErr != nil {
		return cfgErr.Kind, true
	}
	return "", false
}

func idPtr(id int64) *int64 {
	return &id
}
