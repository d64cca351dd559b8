package pricing

import (
	"context"
	"net/http"

	"github.com/angelmondragon/mixbar-backend/api/responses"
	"github.com/angelmondragon/mixbar-backend/api/validators"
	pricingsvc "github.com/angelmondragon/mixbar-backend/internal/pricing"
	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
	"github.com/angelmondragon/mixbar-backend/pkg/logger"
)

// Pricer quotes configurations without touching a cart.
type Pricer interface {
	PriceMixConfiguration(ctx context.Context, cfg pricingsvc.MixConfiguration) (*pricingsvc.Result, error)
	PriceProduct(ctx context.Context, productID int64, addons []pricingsvc.AddonSelection) (*models.Product, *pricingsvc.Result, error)
}

// QuoteMix prices a mix configuration.
func QuoteMix(svc Pricer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload MixRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := svc.PriceMixConfiguration(r.Context(), payload.ToConfiguration())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewQuote(res))
	}
}

// QuoteProduct prices a regular product with addons.
func QuoteProduct(svc Pricer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		productID, err := validators.ParseInt64Param(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, res, err := svc.PriceProduct(r.Context(), productID, ToAddons(payload.Addons))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewProductQuote(product, res))
	}
}
