package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeInvalidConfig, status: http.StatusUnprocessableEntity, publicMsg: "invalid configuration", detailsOK: true},
		{code: CodeBusinessRule, status: http.StatusUnprocessableEntity, publicMsg: "request rejected by business rule", detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Wrap(CodeDependency, cause, "persist cart")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}
	if dump.SQLState != "" {
		t.Fatalf("expected no sql state for plain errors, got %q", dump.SQLState)
	}
	fields := dump.Fields()
	if _, ok := fields["sql_state"]; ok {
		t.Fatalf("empty sql fields should be omitted: %v", fields)
	}
	if fields["error_code"] != CodeDependency {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestDumpReadsDriverErrors(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_carts_active_session", TableName: "carts"}
	dump := Dump(Wrap(CodeConflict, pgErr, "create cart"))
	if dump.SQLState != "23505" || dump.SQLConstraint != "idx_carts_active_session" || dump.SQLTable != "carts" {
		t.Fatalf("unexpected pgx dump %+v", dump)
	}

	pqDump := Dump(fmt.Errorf("insert: %w", &pq.Error{Code: "23503", Constraint: "cart_items_cart_id_fkey"}))
	if pqDump.SQLState != "23503" || pqDump.SQLConstraint != "cart_items_cart_id_fkey" {
		t.Fatalf("unexpected pq dump %+v", pqDump)
	}

	liteDump := Dump(fmt.Errorf("create: %w", stdErrors.New("UNIQUE constraint failed: carts.session_id")))
	if liteDump.SQLMessage != "UNIQUE constraint failed: carts.session_id" {
		t.Fatalf("unexpected sqlite dump %+v", liteDump)
	}
}

func TestCodeHelpers(t *testing.T) {
	inner := New(CodeNotFound, "cart item not found")
	outer := Wrap(CodeInternal, fmt.Errorf("remove: %w", inner), "remove item")

	if CodeOf(outer) != CodeInternal {
		t.Fatalf("CodeOf should use the outermost typed error, got %s", CodeOf(outer))
	}
	if !HasCode(outer, CodeNotFound) {
		t.Fatalf("HasCode should walk the chain")
	}
	if HasCode(outer, CodeConflict) {
		t.Fatalf("HasCode matched an absent code")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("plain errors should map to internal")
	}
	if got := Newf(CodeValidation, "quantity %d out of range", 0).Message(); got != "quantity 0 out of range" {
		t.Fatalf("unexpected Newf message %q", got)
	}
	if got := outer.Error(); got != "INTERNAL_ERROR: remove item: remove: NOT_FOUND: cart item not found" {
		t.Fatalf("unexpected error string %q", got)
	}
}
