package pricing

import (
	pricingsvc "github.com/angelmondragon/mixbar-backend/internal/pricing"
	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	"github.com/angelmondragon/mixbar-backend/pkg/types"
)

// Quote is a priced configuration. Amounts are fixed two-decimal strings.
type Quote struct {
	Total     string          `json:"total"`
	Breakdown []BreakdownLine `json:"breakdown"`
	Product   *ProductSummary `json:"product,omitempty"`
}

type BreakdownLine struct {
	Label      string              `json:"label"`
	Amount     string              `json:"amount"`
	Type       enums.BreakdownType `json:"type"`
	ModifierID *int64              `json:"modifier_id,omitempty"`
	ProductID  *int64              `json:"product_id,omitempty"`
	Level      *int                `json:"level,omitempty"`
}

type ProductSummary struct {
	ID   int64               `json:"id"`
	Name types.LocalizedText `json:"name"`
}

func NewQuote(res *pricingsvc.Result) Quote {
	return Quote{
		Total:     pricingsvc.Round(res.Total).StringFixed(2),
		Breakdown: NewBreakdown(res.Breakdown),
	}
}

func NewProductQuote(product *models.Product, res *pricingsvc.Result) Quote {
	q := NewQuote(res)
	if product != nil {
		q.Product = &ProductSummary{ID: product.ID, Name: product.Name}
	}
	return q
}

// NewBreakdown renders breakdown lines; shared with the cart item view.
func NewBreakdown(lines []types.BreakdownLine) []BreakdownLine {
	out := make([]BreakdownLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, BreakdownLine{
			Label:      line.Label,
			Amount:     line.Amount.StringFixed(2),
			Type:       line.Type,
			ModifierID: line.ModifierID,
			ProductID:  line.ProductID,
			Level:      line.Level,
		})
	}
	return out
}
