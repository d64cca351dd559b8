package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mixbar-backend/api/middleware"
	cartsvc "github.com/angelmondragon/mixbar-backend/internal/cart"
	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
	"github.com/angelmondragon/mixbar-backend/pkg/types"
)

type stubCartService struct {
	cart *models.Cart
	item *models.CartItem
	err  error

	calls       []string
	lastMix     cartsvc.AddMixInput
	lastProduct cartsvc.AddProductInput
	lastQty     int
	lastItemID  uuid.UUID
	lastCode    string
	lastID      cartsvc.Identity
}

func (s *stubCartService) record(call string, identity cartsvc.Identity) {
	s.calls = append(s.calls, call)
	s.lastID = identity
}

func (s *stubCartService) GetActiveCart(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID) (*models.Cart, error) {
	s.record("get", identity)
	return s.cart, s.err
}

func (s *stubCartService) AddMixItem(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID, input cartsvc.AddMixInput) (*models.Cart, *models.CartItem, error) {
	s.record("add_mix", identity)
	s.lastMix = input
	return s.cart, s.item, s.err
}

func (s *stubCartService) AddCreatorMixItem(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID, input cartsvc.AddMixInput) (*models.Cart, *models.CartItem, error) {
	s.record("add_creator_mix", identity)
	s.lastMix = input
	return s.cart, s.item, s.err
}

func (s *stubCartService) AddProductItem(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID, input cartsvc.AddProductInput) (*models.Cart, *models.CartItem, error) {
	s.record("add_product", identity)
	s.lastProduct = input
	return s.cart, s.item, s.err
}

func (s *stubCartService) UpdateItemQuantity(ctx context.Context, identity cartsvc.Identity, storeID, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	s.record("update", identity)
	s.lastItemID = itemID
	s.lastQty = quantity
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, identity cartsvc.Identity, storeID, itemID uuid.UUID) (*models.Cart, error) {
	s.record("remove", identity)
	s.lastItemID = itemID
	return s.cart, s.err
}

func (s *stubCartService) ApplyPromo(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID, code string) (*models.Cart, error) {
	s.record("apply_promo", identity)
	s.lastCode = code
	return s.cart, s.err
}

func (s *stubCartService) RemovePromo(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID) (*models.Cart, error) {
	s.record("remove_promo", identity)
	return s.cart, s.err
}

func (s *stubCartService) Abandon(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID) (*models.Cart, error) {
	s.record("abandon", identity)
	return s.cart, s.err
}

func sampleCart(storeID uuid.UUID) *models.Cart {
	session := "sess-1"
	productID := int64(5)
	promoID := uuid.New()
	cartID := uuid.New()
	return &models.Cart{
		ID:          cartID,
		SessionID:   &session,
		StoreID:     storeID,
		PromoCodeID: &promoID,
		PromoCode: &models.PromoCode{
			ID:            promoID,
			Code:          "SAVE20",
			DiscountType:  enums.DiscountTypePercentage,
			DiscountValue: decimal.NewFromInt(20),
		},
		Subtotal: decimal.RequireFromString("50"),
		Discount: decimal.RequireFromString("10"),
		Total:    decimal.RequireFromString("40"),
		Items: []models.CartItem{{
			ID:        uuid.New(),
			CartID:    cartID,
			ItemType:  enums.CartItemTypeProduct,
			ProductID: &productID,
			Name:      "Cold Brew",
			Price:     decimal.RequireFromString("12.5"),
			Quantity:  4,
			Configuration: types.ConfigurationSnapshot{
				SchemaVersion: types.ConfigurationSchemaVersion,
				ItemType:      enums.CartItemTypeProduct,
				Product:       &types.ProductSnapshot{ProductID: productID},
				Breakdown: []types.BreakdownLine{
					{Label: "Cold Brew", Amount: decimal.RequireFromString("12.5"), Type: enums.BreakdownTypeProduct},
				},
				Total: decimal.RequireFromString("12.5"),
			},
		}},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func newRouter(svc Service) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/v1/cart", CartFetch(svc, nil))
	r.Post("/api/v1/cart/items", CartAddItem(svc, nil))
	r.Patch("/api/v1/cart/items/{itemId}", CartUpdateItem(svc, nil))
	r.Delete("/api/v1/cart/items/{itemId}", CartRemoveItem(svc, nil))
	r.Post("/api/v1/cart/promo", CartApplyPromo(svc, nil))
	r.Delete("/api/v1/cart/promo", CartRemovePromo(svc, nil))
	r.Post("/api/v1/cart/abandon", CartAbandon(svc, nil))
	return r
}

func sessionRequest(method, target, body string, storeID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := middleware.WithSessionID(req.Context(), "sess-1")
	ctx = middleware.WithStoreID(ctx, storeID)
	return req.WithContext(ctx)
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Data
}

func TestCartFetchSuccess(t *testing.T) {
	storeID := uuid.New()
	svc := &stubCartService{cart: sampleCart(storeID)}

	resp := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(resp, sessionRequest(http.MethodGet, "/api/v1/cart", "", storeID))

	require.Equal(t, http.StatusOK, resp.Code)
	view := decodeData[CartView](t, resp)
	assert.Equal(t, svc.cart.ID, view.ID)
	assert.Equal(t, enums.CartStatusActive, view.Status)
	assert.Equal(t, "50.00", view.Subtotal)
	assert.Equal(t, "10.00", view.Discount)
	assert.Equal(t, "40.00", view.Total)
	require.NotNil(t, view.Promo)
	assert.Equal(t, "SAVE20", view.Promo.Code)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "12.50", view.Items[0].Price)
	assert.Equal(t, "50.00", view.Items[0].LineTotal)
	assert.Equal(t, "sess-1", svc.lastID.SessionID)
}

func TestCartFetchMissingContext(t *testing.T) {
	svc := &stubCartService{}
	resp := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, svc.calls)
}

func TestCartAddItemDispatch(t *testing.T) {
	storeID := uuid.New()
	cases := []struct {
		name string
		body string
		call string
	}{
		{name: "product", body: `{"item_type":"product","product_id":5,"addons":[{"modifier_id":9,"level":2}],"quantity":2}`, call: "add_product"},
		{name: "mix", body: `{"item_type":"mix","configuration":{"base_id":7,"modifiers":[{"id":11}]}}`, call: "add_mix"},
		{name: "creator mix", body: `{"item_type":"creator_mix","name":"  Sunrise  ","configuration":{"base_id":7,"builder_id":2}}`, call: "add_creator_mix"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cart := sampleCart(storeID)
			svc := &stubCartService{cart: cart, item: &cart.Items[0]}

			resp := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/cart/items", tc.body, storeID))

			require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
			require.Equal(t, []string{tc.call}, svc.calls)
			view := decodeData[AddItemView](t, resp)
			assert.Equal(t, cart.Items[0].ID, view.Item.ID)
		})
	}
}

func TestCartAddItemMapsInputs(t *testing.T) {
	storeID := uuid.New()
	cart := sampleCart(storeID)
	svc := &stubCartService{cart: cart, item: &cart.Items[0]}
	router := newRouter(svc)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/cart/items",
		`{"item_type":"product","product_id":5,"addons":[{"modifier_id":9,"level":2}]}`, storeID))
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, int64(5), svc.lastProduct.ProductID)
	assert.Equal(t, 1, svc.lastProduct.Quantity, "quantity defaults to one")
	require.Len(t, svc.lastProduct.Addons, 1)
	assert.Equal(t, 2, *svc.lastProduct.Addons[0].Level)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/cart/items",
		`{"item_type":"creator_mix","name":"  Sunrise  ","quantity":3,"configuration":{"base_id":7,"mix_builder_id":2}}`, storeID))
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "Sunrise", svc.lastMix.Name)
	assert.Equal(t, 3, svc.lastMix.Quantity)
	require.NotNil(t, svc.lastMix.Configuration.Builder())
	assert.Equal(t, int64(2), *svc.lastMix.Configuration.Builder())
}

func TestCartAddItemValidation(t *testing.T) {
	storeID := uuid.New()
	cases := []struct {
		name string
		body string
	}{
		{name: "unknown type", body: `{"item_type":"gift_card"}`},
		{name: "missing type", body: `{"product_id":5}`},
		{name: "product without id", body: `{"item_type":"product"}`},
		{name: "product with configuration", body: `{"item_type":"product","product_id":5,"configuration":{"base_id":1}}`},
		{name: "mix without configuration", body: `{"item_type":"mix"}`},
		{name: "mix with product id", body: `{"item_type":"mix","product_id":5,"configuration":{"base_id":1}}`},
		{name: "client price rejected", body: `{"item_type":"product","product_id":5,"price":"0.01"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubCartService{}
			resp := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/cart/items", tc.body, storeID))

			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			assert.Empty(t, svc.calls)
		})
	}
}

func TestCartUpdateAndRemoveItem(t *testing.T) {
	storeID := uuid.New()
	svc := &stubCartService{cart: sampleCart(storeID)}
	router := newRouter(svc)
	itemID := uuid.New()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, sessionRequest(http.MethodPatch, "/api/v1/cart/items/"+itemID.String(), `{"quantity":3}`, storeID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, itemID, svc.lastItemID)
	assert.Equal(t, 3, svc.lastQty)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, sessionRequest(http.MethodDelete, "/api/v1/cart/items/"+itemID.String(), "", storeID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"update", "remove"}, svc.calls)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, sessionRequest(http.MethodDelete, "/api/v1/cart/items/not-a-uuid", "", storeID))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCartServiceErrorsPropagate(t *testing.T) {
	storeID := uuid.New()
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found"), status: http.StatusNotFound},
		{name: "abandoned", err: pkgerrors.New(pkgerrors.CodeStateConflict, "cart is abandoned"), status: http.StatusUnprocessableEntity},
		{name: "promo rule", err: pkgerrors.New(pkgerrors.CodeBusinessRule, "minimum order not met"), status: http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubCartService{err: tc.err}
			resp := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/cart/promo", `{"code":"save20"}`, storeID))
			assert.Equal(t, tc.status, resp.Code)
			assert.Equal(t, "save20", svc.lastCode)
		})
	}
}

func TestCartPromoRoutes(t *testing.T) {
	storeID := uuid.New()
	svc := &stubCartService{cart: sampleCart(storeID)}
	router := newRouter(svc)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/cart/promo", `{}`, storeID))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, sessionRequest(http.MethodDelete, "/api/v1/cart/promo", "", storeID))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"remove_promo"}, svc.calls)
}

func TestCartAbandon(t *testing.T) {
	storeID := uuid.New()
	cart := sampleCart(storeID)
	now := time.Now()
	cart.AbandonedAt = &now
	svc := &stubCartService{cart: cart}

	resp := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/cart/abandon", "", storeID))
	require.Equal(t, http.StatusOK, resp.Code)
	view := decodeData[AbandonView](t, resp)
	assert.True(t, view.Abandoned)
	require.NotNil(t, view.Cart)
	assert.Equal(t, enums.CartStatusAbandoned, view.Cart.Status)

	none := &stubCartService{}
	resp = httptest.NewRecorder()
	newRouter(none).ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/cart/abandon", "", storeID))
	require.Equal(t, http.StatusOK, resp.Code)
	view = decodeData[AbandonView](t, resp)
	assert.False(t, view.Abandoned)
	assert.Nil(t, view.Cart)
}
