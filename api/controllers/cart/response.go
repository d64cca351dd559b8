package cart

import (
	"time"

	"github.com/google/uuid"

	pricingctl "github.com/angelmondragon/mixbar-backend/api/controllers/pricing"
	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	"github.com/angelmondragon/mixbar-backend/pkg/types"
)

// CartView is the client view of a cart. Money is rendered as fixed
// two-decimal strings.
type CartView struct {
	ID          uuid.UUID        `json:"id"`
	Status      enums.CartStatus `json:"status"`
	StoreID     uuid.UUID        `json:"store_id"`
	CustomerID  *uuid.UUID       `json:"customer_id,omitempty"`
	SessionID   *string          `json:"session_id,omitempty"`
	Items       []ItemView       `json:"items"`
	Promo       *PromoView       `json:"promo,omitempty"`
	Subtotal    string           `json:"subtotal"`
	Discount    string           `json:"discount"`
	Total       string           `json:"total"`
	AbandonedAt *time.Time       `json:"abandoned_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type ItemView struct {
	ID            uuid.UUID          `json:"id"`
	ItemType      enums.CartItemType `json:"item_type"`
	ProductID     *int64             `json:"product_id,omitempty"`
	Name          string             `json:"name"`
	Price         string             `json:"price"`
	Quantity      int                `json:"quantity"`
	LineTotal     string             `json:"line_total"`
	Configuration ConfigurationView  `json:"configuration"`
	CreatedAt     time.Time          `json:"created_at"`
}

type ConfigurationView struct {
	SchemaVersion int                        `json:"schema_version"`
	Mix           *types.MixSnapshot         `json:"mix,omitempty"`
	Product       *types.ProductSnapshot     `json:"product,omitempty"`
	Breakdown     []pricingctl.BreakdownLine `json:"breakdown"`
}

type PromoView struct {
	ID            uuid.UUID          `json:"id"`
	Code          string             `json:"code"`
	DiscountType  enums.DiscountType `json:"discount_type"`
	DiscountValue string             `json:"discount_value"`
}

// AddItemView pairs the updated cart with the line just created.
type AddItemView struct {
	Cart CartView `json:"cart"`
	Item ItemView `json:"item"`
}

// AbandonView reports the abandon outcome; Cart is nil when there was no
// active cart.
type AbandonView struct {
	Abandoned bool      `json:"abandoned"`
	Cart      *CartView `json:"cart,omitempty"`
}

func newCartView(cart *models.Cart) CartView {
	view := CartView{
		ID:          cart.ID,
		Status:      cart.Status(),
		StoreID:     cart.StoreID,
		CustomerID:  cart.CustomerID,
		SessionID:   cart.SessionID,
		Items:       make([]ItemView, 0, len(cart.Items)),
		Subtotal:    cart.Subtotal.StringFixed(2),
		Discount:    cart.Discount.StringFixed(2),
		Total:       cart.Total.StringFixed(2),
		AbandonedAt: cart.AbandonedAt,
		CreatedAt:   cart.CreatedAt,
		UpdatedAt:   cart.UpdatedAt,
	}
	for i := range cart.Items {
		view.Items = append(view.Items, newItemView(&cart.Items[i]))
	}
	if cart.PromoCode != nil {
		view.Promo = &PromoView{
			ID:            cart.PromoCode.ID,
			Code:          cart.PromoCode.Code,
			DiscountType:  cart.PromoCode.DiscountType,
			DiscountValue: cart.PromoCode.DiscountValue.StringFixed(2),
		}
	}
	return view
}

func newItemView(item *models.CartItem) ItemView {
	return ItemView{
		ID:        item.ID,
		ItemType:  item.ItemType,
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.Price.StringFixed(2),
		Quantity:  item.Quantity,
		LineTotal: item.LineTotal().StringFixed(2),
		Configuration: ConfigurationView{
			SchemaVersion: item.Configuration.SchemaVersion,
			Mix:           item.Configuration.Mix,
			Product:       item.Configuration.Product,
			Breakdown:     pricingctl.NewBreakdown(item.Configuration.Breakdown),
		},
		CreatedAt: item.CreatedAt,
	}
}
