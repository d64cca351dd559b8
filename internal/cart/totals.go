package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	"github.com/angelmondragon/mixbar-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Totals are the derived money fields of a cart.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives cart totals from the attached items and the linked
// promo. Item prices are taken as stored; nothing is re-priced.
func ComputeTotals(items []models.CartItem, promo *models.PromoCode) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	subtotal = subtotal.Round(2)

	discount := decimal.Zero
	if promo != nil {
		switch promo.DiscountType {
		case enums.DiscountTypePercentage:
			discount = subtotal.Mul(promo.DiscountValue).Div(hundred).Round(2)
		case enums.DiscountTypeFixed:
			discount = decimal.Min(promo.DiscountValue, subtotal).Round(2)
		}
	}

	total := subtotal.Sub(discount).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Totals{Subtotal: subtotal, Discount: discount, Total: total}
}
