package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mixbar-backend/internal/catalog"
	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
	"github.com/angelmondragon/mixbar-backend/pkg/metrics"
	"github.com/angelmondragon/mixbar-backend/pkg/types"
)

const (
	kindMix     = "mix"
	kindProduct = "product"
)

// Catalog is the read-only catalog surface the calculator depends on.
// Missing records are reported as catalog.ErrNotFound.
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	GetModifier(ctx context.Context, id int64) (*models.Modifier, error)
	GetAddonAssignments(ctx context.Context, productID int64) ([]models.AddonAssignment, error)
	HasBaseAssignment(ctx context.Context, productID, builderID int64) (bool, error)
}

// Calculator validates configurations and prices them. It has no side effects
// besides metrics.
type Calculator struct {
	catalog Catalog
	locale  string
	metrics *metrics.PricingMetrics
}

// Option customizes a Calculator.
type Option func(*Calculator)

// WithLocale sets the locale used for breakdown labels.
func WithLocale(locale string) Option {
	return func(c *Calculator) {
		if locale != "" {
			c.locale = locale
		}
	}
}

// WithMetrics records request outcomes on m.
func WithMetrics(m *metrics.PricingMetrics) Option {
	return func(c *Calculator) { c.metrics = m }
}

// NewCalculator builds a calculator over the provided catalog.
func NewCalculator(cat Catalog, opts ...Option) (*Calculator, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog required")
	}
	c := &Calculator{catalog: cat, locale: types.DefaultLocale}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PriceMixConfiguration prices a mix or creator mix.
func (c *Calculator) PriceMixConfiguration(ctx context.Context, cfg MixConfiguration) (*Result, error) {
	res, err := c.priceMix(ctx, cfg)
	c.observe(kindMix, err)
	return res, err
}

func (c *Calculator) priceMix(ctx context.Context, cfg MixConfiguration) (*Result, error) {
	acc := newAccumulator()
	snap := &types.MixSnapshot{
		BaseID:    cfg.BaseID,
		BuilderID: cfg.Builder(),
		Modifiers: make([]types.LevelSelection, 0, len(cfg.Modifiers)),
		Extras:    make([]types.ExtraSelection, 0, len(cfg.Extras)),
	}

	base, err := c.resolveBase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if base.product != nil {
		acc.add(types.BreakdownLine{
			Label:     base.product.Name.Get(c.locale),
			Amount:    base.price,
			Type:      enums.BreakdownTypeBase,
			ProductID: idPtr(base.product.ID),
		}, false)
	} else {
		price := base.price
		snap.BasePrice = &price
		acc.add(types.BreakdownLine{Label: "Base", Amount: base.price, Type: enums.BreakdownTypeBase}, false)
	}

	for _, sel := range cfg.Modifiers {
		level := effectiveLevel(sel.Level)
		modifier, err := c.resolveModifier(ctx, sel.ID, level)
		if err != nil {
			return nil, err
		}
		acc.add(c.leveledLine(modifier, level, enums.BreakdownTypeModifier), false)
		snap.Modifiers = append(snap.Modifiers, types.LevelSelection{ID: sel.ID, Level: level})
	}

	for _, id := range cfg.Extras {
		resolution, err := c.ResolveExtra(ctx, id)
		if err != nil {
			return nil, err
		}
		switch r := resolution.(type) {
		case ResolvedAsProduct:
			acc.add(types.BreakdownLine{
				Label:     r.Product.Name.Get(c.locale),
				Amount:    r.Product.BasePrice,
				Type:      enums.BreakdownTypeExtra,
				ProductID: idPtr(r.Product.ID),
			}, false)
			snap.Extras = append(snap.Extras, types.ExtraSelection{ID: id, ResolvedAs: "product"})
		case ResolvedAsModifier:
			acc.add(types.BreakdownLine{
				Label:      r.Modifier.Name.Get(c.locale),
				Amount:     r.Modifier.Price,
				Type:       enums.BreakdownTypeExtra,
				ModifierID: idPtr(r.Modifier.ID),
			}, false)
			snap.Extras = append(snap.Extras, types.ExtraSelection{ID: id, ResolvedAs: "modifier"})
		case NotFound:
			return nil, configError(KindExtraNotFound, idPtr(r.ID), "extra %d not found", r.ID)
		}
	}

	return &Result{Total: acc.total(), Breakdown: acc.lines, mix: snap}, nil
}

// PriceProductWithAddons prices a regular product carrying addon modifiers.
func (c *Calculator) PriceProductWithAddons(ctx context.Context, product *models.Product, addons []AddonSelection) (*Result, error) {
	res, err := c.priceProduct(ctx, product, addons)
	c.observe(kindProduct, err)
	return res, err
}

// PriceProduct loads the product by id and prices it with addons. Mix bases
// are not sold on their own.
func (c *Calculator) PriceProduct(ctx context.Context, productID int64, addons []AddonSelection) (*models.Product, *Result, error) {
	product, err := c.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Kind == enums.ProductKindMixBase {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "mix bases can only be ordered as part of a mix")
	}
	res, err := c.PriceProductWithAddons(ctx, product, addons)
	if err != nil {
		return nil, nil, err
	}
	return product, res, nil
}

func (c *Calculator) priceProduct(ctx context.Context, product *models.Product, addons []AddonSelection) (*Result, error) {
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	if !product.IsActive {
		return nil, configError(KindInactiveProduct, idPtr(product.ID), "product %d is not active", product.ID)
	}

	acc := newAccumulator()
	acc.add(types.BreakdownLine{
		Label:     product.Name.Get(c.locale),
		Amount:    product.BasePrice,
		Type:      enums.BreakdownTypeProduct,
		ProductID: idPtr(product.ID),
	}, true)
	snap := &types.ProductSnapshot{ProductID: product.ID, Addons: make([]types.LevelSelection, 0, len(addons))}

	if len(addons) > 0 {
		assignments, err := c.catalog.GetAddonAssignments(ctx, product.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addon assignments")
		}
		byModifier := make(map[int64]models.AddonAssignment, len(assignments))
		for _, a := range assignments {
			byModifier[a.ModifierID] = a
		}

		for _, sel := range addons {
			assignment, ok := byModifier[sel.ModifierID]
			if !ok {
				return nil, configError(KindAddonNotAssigned, idPtr(sel.ModifierID), "modifier %d is not an addon of product %d", sel.ModifierID, product.ID)
			}
			level := effectiveLevel(sel.Level)
			if err := checkAddonRange(assignment, level); err != nil {
				return nil, err
			}
			modifier, err := c.resolveModifier(ctx, sel.ModifierID, level)
			if err != nil {
				return nil, err
			}
			acc.add(c.leveledLine(modifier, level, enums.BreakdownTypeAddon), false)
			snap.Addons = append(snap.Addons, types.LevelSelection{ID: sel.ModifierID, Level: level})
		}
	}

	return &Result{Total: acc.total(), Breakdown: acc.lines, product: snap}, nil
}

func (c *Calculator) leveledLine(modifier *models.Modifier, level int, typ enums.BreakdownType) types.BreakdownLine {
	label := modifier.Name.Get(c.locale)
	if level != 1 {
		label = fmt.Sprintf("%s x%d", label, level)
	}
	lvl := level
	return types.BreakdownLine{
		Label:      label,
		Amount:     modifier.Price.Mul(decimal.NewFromInt(int64(level))),
		Type:       typ,
		ModifierID: idPtr(modifier.ID),
		Level:      &lvl,
	}
}

func (c *Calculator) observe(kind string, err error) {
	if c.metrics == nil {
		return
	}
	switch k, ok := KindOf(err); {
	case err == nil:
		c.metrics.Observe(kind, metrics.OutcomeOK)
	case ok:
		c.metrics.Observe(kind, metrics.OutcomeRejected)
		c.metrics.Rejected(string(k))
	default:
		c.metrics.Observe(kind, metrics.OutcomeError)
	}
}

// accumulator sums contributions rounded to cents.
type accumulator struct {
	sum   decimal.Decimal
	lines []types.BreakdownLine
}

func newAccumulator() *accumulator {
	return &accumulator{lines: []types.BreakdownLine{}}
}

// add rounds the line amount and adds it; zero lines are only kept when
// always is set.
func (a *accumulator) add(line types.BreakdownLine, always bool) {
	line.Amount = Round(line.Amount)
	a.sum = a.sum.Add(line.Amount)
	if always || line.Amount.IsPositive() {
		a.lines = append(a.lines, line)
	}
}

func (a *accumulator) total() decimal.Decimal {
	return Round(a.sum)
}

// Round rounds a monetary amount to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
