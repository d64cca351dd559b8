package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
)

func TestIdentityMiddleware(t *testing.T) {
	storeID := uuid.New()
	customerID := uuid.New()

	tests := []struct {
		name     string
		headers  map[string]string
		wantCode int
	}{
		{"customer", map[string]string{HeaderStoreID: storeID.String(), HeaderCustomerID: customerID.String()}, http.StatusOK},
		{"session", map[string]string{HeaderStoreID: storeID.String(), HeaderSessionID: "sess-9"}, http.StatusOK},
		{"missing store", map[string]string{HeaderSessionID: "sess-9"}, http.StatusBadRequest},
		{"bad store", map[string]string{HeaderStoreID: "nope", HeaderSessionID: "sess-9"}, http.StatusBadRequest},
		{"both identities", map[string]string{HeaderStoreID: storeID.String(), HeaderCustomerID: customerID.String(), HeaderSessionID: "s"}, http.StatusBadRequest},
		{"no identity", map[string]string{HeaderStoreID: storeID.String()}, http.StatusBadRequest},
		{"bad customer", map[string]string{HeaderStoreID: storeID.String(), HeaderCustomerID: "123"}, http.StatusBadRequest},
		{"long session", map[string]string{HeaderStoreID: storeID.String(), HeaderSessionID: strings.Repeat("x", maxSessionIDLen+1)}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				gotCustomer *uuid.UUID
				gotSession  string
				gotStore    uuid.UUID
			)
			h := Identity(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCustomer = CustomerIDFromContext(r.Context())
				gotSession = SessionIDFromContext(r.Context())
				gotStore = StoreIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d (%s)", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				assertErrorCode(t, rec, pkgerrors.CodeValidation)
				return
			}
			if gotStore != storeID {
				t.Fatalf("expected store %s, got %s", storeID, gotStore)
			}
			if tt.name == "customer" && (gotCustomer == nil || *gotCustomer != customerID || gotSession != "") {
				t.Fatalf("unexpected customer identity %v/%q", gotCustomer, gotSession)
			}
			if tt.name == "session" && (gotCustomer != nil || gotSession != "sess-9") {
				t.Fatalf("unexpected session identity %v/%q", gotCustomer, gotSession)
			}
		})
	}
}
