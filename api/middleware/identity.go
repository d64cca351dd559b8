package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/mixbar-backend/api/responses"
	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
	"github.com/angelmondragon/mixbar-backend/pkg/logger"
)

const (
	HeaderCustomerID = "X-Customer-Id"
	HeaderSessionID  = "X-Session-Id"
	HeaderStoreID    = "X-Store-Id"

	maxSessionIDLen = 128
)

// Identity reads the cart owner and store set by the upstream gateway.
// Exactly one of X-Customer-Id or X-Session-Id must be present.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			rawStore := strings.TrimSpace(r.Header.Get(HeaderStoreID))
			storeID, err := uuid.Parse(rawStore)
			if rawStore == "" || err != nil || storeID == uuid.Nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "valid X-Store-Id header required"))
				return
			}

			rawCustomer := strings.TrimSpace(r.Header.Get(HeaderCustomerID))
			session := strings.TrimSpace(r.Header.Get(HeaderSessionID))
			switch {
			case rawCustomer != "" && session != "":
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Customer-Id and X-Session-Id are mutually exclusive"))
				return
			case rawCustomer == "" && session == "":
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Customer-Id or X-Session-Id header required"))
				return
			}

			customerLog := ""
			if rawCustomer != "" {
				customerID, err := uuid.Parse(rawCustomer)
				if err != nil || customerID == uuid.Nil {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Customer-Id must be a uuid"))
					return
				}
				ctx = WithCustomerID(ctx, customerID)
				customerLog = customerID.String()
			} else {
				if len(session) > maxSessionIDLen {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Session-Id is too long"))
					return
				}
				ctx = WithSessionID(ctx, session)
			}
			ctx = WithStoreID(ctx, storeID)

			if logg != nil {
				ctx = logg.WithIdentity(ctx, customerLog, session)
				ctx = logg.WithStoreID(ctx, storeID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
