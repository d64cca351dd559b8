package pricing

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mixbar-backend/internal/catalog"
	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
)

// resolvedBase is the validated foundation of a mix.
type resolvedBase struct {
	product *models.Product
	price   decimal.Decimal
}

func (c *Calculator) resolveBase(ctx context.Context, cfg MixConfiguration) (resolvedBase, error) {
	if cfg.BaseID == nil {
		if cfg.BasePrice == nil {
			return resolvedBase{}, configError(KindMissingBase, nil, "a base_id or base_price is required")
		}
		if cfg.BasePrice.IsNegative() {
			return resolvedBase{}, configError(KindNegativeBasePrice, nil, "base_price must not be negative")
		}
		return resolvedBase{price: *cfg.BasePrice}, nil
	}

	id := *cfg.BaseID
	product, err := c.catalog.GetProduct(ctx, id)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return resolvedBase{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load base product")
	}
	if product == nil || !product.IsActive || product.Kind != enums.ProductKindMixBase {
		return resolvedBase{}, configError(KindBaseNotFoundOrInvalid, idPtr(id), "base %d is not an active mix base", id)
	}

	if builder := cfg.Builder(); builder != nil {
		ok, err := c.catalog.HasBaseAssignment(ctx, id, *builder)
		if err != nil {
			return resolvedBase{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load base assignment")
		}
		if !ok {
			return resolvedBase{}, configError(KindBaseNotAssignedToBuilder, idPtr(id), "base %d is not available for builder %d", id, *builder)
		}
	}
	return resolvedBase{product: product, price: product.BasePrice}, nil
}

// resolveModifier loads an active modifier and checks the level against it.
func (c *Calculator) resolveModifier(ctx context.Context, id int64, level int) (*models.Modifier, error) {
	modifier, err := c.catalog.GetModifier(ctx, id)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load modifier")
	}
	if modifier == nil || !modifier.IsActive {
		return nil, configError(KindModifierNotFound, idPtr(id), "modifier %d not found", id)
	}
	if level < 0 {
		return nil, configError(KindNegativeLevel, idPtr(id), "level for modifier %d must not be negative", id)
	}
	if modifier.MaxLevel != nil && level > *modifier.MaxLevel {
		return nil, configError(KindLevelExceedsMax, idPtr(id), "level %d exceeds max %d for modifier %d", level, *modifier.MaxLevel, id)
	}
	return modifier, nil
}

// ExtraResolution is the outcome of resolving a bare extra id. Exactly one of
// ResolvedAsProduct, ResolvedAsModifier or NotFound.
type ExtraResolution interface {
	extraResolution()
}

type ResolvedAsProduct struct {
	Product *models.Product
}

type ResolvedAsModifier struct {
	Modifier *models.Modifier
}

type NotFound struct {
	ID int64
}

func (ResolvedAsProduct) extraResolution()  {}
func (ResolvedAsModifier) extraResolution() {}
func (NotFound) extraResolution()           {}

// ResolveExtra tries an active product first, then an active modifier of
// type extra.
func (c *Calculator) ResolveExtra(ctx context.Context, id int64) (ExtraResolution, error) {
	product, err := c.catalog.GetProduct(ctx, id)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load extra product")
	}
	if product != nil && product.IsActive {
		return ResolvedAsProduct{Product: product}, nil
	}

	modifier, err := c.catalog.GetModifier(ctx, id)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load extra modifier")
	}
	if modifier != nil && modifier.IsActive && modifier.Type == enums.ModifierTypeExtra {
		return ResolvedAsModifier{Modifier: modifier}, nil
	}
	return NotFound{ID: id}, nil
}

// checkAddonRange enforces the assignment's inclusive level bounds.
func checkAddonRange(assignment models.AddonAssignment, level int) error {
	if assignment.MinSelect != nil && level < *assignment.MinSelect {
		return configError(KindLevelOutOfRange, idPtr(assignment.ModifierID), "level %d below minimum %d for addon %d", level, *assignment.MinSelect, assignment.ModifierID)
	}
	if assignment.MaxSelect != nil && level > *assignment.MaxSelect {
		return configError(KindLevelOutOfRange, idPtr(assignment.ModifierID), "level %d above maximum %d for addon %d", level, *assignment.MaxSelect, assignment.ModifierID)
	}
	return nil
}
