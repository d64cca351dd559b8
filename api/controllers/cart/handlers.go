package cart

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/mixbar-backend/api/middleware"
	"github.com/angelmondragon/mixbar-backend/api/responses"
	"github.com/angelmondragon/mixbar-backend/api/validators"
	cartsvc "github.com/angelmondragon/mixbar-backend/internal/cart"
	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
	"github.com/angelmondragon/mixbar-backend/pkg/logger"
)

// Service is the cart surface the HTTP layer drives.
type Service interface {
	GetActiveCart(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID) (*models.Cart, error)
	AddMixItem(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID, input cartsvc.AddMixInput) (*models.Cart, *models.CartItem, error)
	AddCreatorMixItem(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID, input cartsvc.AddMixInput) (*models.Cart, *models.CartItem, error)
	AddProductItem(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID, input cartsvc.AddProductInput) (*models.Cart, *models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, identity cartsvc.Identity, storeID, itemID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, identity cartsvc.Identity, storeID, itemID uuid.UUID) (*models.Cart, error)
	ApplyPromo(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID, code string) (*models.Cart, error)
	RemovePromo(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID) (*models.Cart, error)
	Abandon(ctx context.Context, identity cartsvc.Identity, storeID uuid.UUID) (*models.Cart, error)
}

// CartFetch returns the caller's active cart, creating it on first access.
func CartFetch(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, storeID, ok := scope(w, r, svc, logg)
		if !ok {
			return
		}

		record, err := svc.GetActiveCart(r.Context(), identity, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(record))
	}
}

// CartAddItem prices and appends a line. The price is computed server-side;
// clients never send one.
func CartAddItem(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, storeID, ok := scope(w, r, svc, logg)
		if !ok {
			return
		}

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var (
			record *models.Cart
			item   *models.CartItem
			err    error
		)
		switch payload.ItemType {
		case enums.CartItemTypeProduct:
			if payload.ProductID == nil || payload.Configuration != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product items require product_id and no configuration"))
				return
			}
			record, item, err = svc.AddProductItem(r.Context(), identity, storeID, payload.toProductInput())
		case enums.CartItemTypeMix, enums.CartItemTypeCreatorMix:
			if payload.Configuration == nil || payload.ProductID != nil || len(payload.Addons) > 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "mix items require a configuration and no product_id or addons"))
				return
			}
			if payload.ItemType == enums.CartItemTypeMix {
				record, item, err = svc.AddMixItem(r.Context(), identity, storeID, payload.toMixInput())
			} else {
				record, item, err = svc.AddCreatorMixItem(r.Context(), identity, storeID, payload.toMixInput())
			}
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "unsupported item_type")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, AddItemView{Cart: newCartView(record), Item: newItemView(item)})
	}
}

func CartUpdateItem(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, storeID, ok := scope(w, r, svc, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload UpdateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateItemQuantity(r.Context(), identity, storeID, itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(record))
	}
}

func CartRemoveItem(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, storeID, ok := scope(w, r, svc, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RemoveItem(r.Context(), identity, storeID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(record))
	}
}

func CartApplyPromo(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, storeID, ok := scope(w, r, svc, logg)
		if !ok {
			return
		}

		var payload ApplyPromoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.ApplyPromo(r.Context(), identity, storeID, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(record))
	}
}

func CartRemovePromo(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, storeID, ok := scope(w, r, svc, logg)
		if !ok {
			return
		}

		record, err := svc.RemovePromo(r.Context(), identity, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(record))
	}
}

// CartAbandon abandons the active cart. Repeating it is harmless.
func CartAbandon(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, storeID, ok := scope(w, r, svc, logg)
		if !ok {
			return
		}

		record, err := svc.Abandon(r.Context(), identity, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view := AbandonView{}
		if record != nil {
			cv := newCartView(record)
			view.Abandoned = record.IsAbandoned()
			view.Cart = &cv
		}
		responses.WriteSuccess(w, view)
	}
}

// scope reads the identity and store placed on the context by the Identity
// middleware and writes the error response itself when they are missing.
func scope(w http.ResponseWriter, r *http.Request, svc Service, logg *logger.Logger) (cartsvc.Identity, uuid.UUID, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return cartsvc.Identity{}, uuid.Nil, false
	}
	storeID := middleware.StoreIDFromContext(r.Context())
	if storeID == uuid.Nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store context missing"))
		return cartsvc.Identity{}, uuid.Nil, false
	}
	identity := cartsvc.Identity{
		CustomerID: middleware.CustomerIDFromContext(r.Context()),
		SessionID:  middleware.SessionIDFromContext(r.Context()),
	}
	if err := identity.Validate(); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return cartsvc.Identity{}, uuid.Nil, false
	}
	return identity, storeID, true
}
