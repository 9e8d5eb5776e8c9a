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
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
		{code: CodeEmptyCart, status: http.StatusUnprocessableEntity, publicMsg: "cart is empty"},
		{code: CodeInvalidAddress, status: http.StatusUnprocessableEntity, publicMsg: "delivery address is invalid"},
		{code: CodeSlotUnavailable, status: http.StatusConflict, publicMsg: "delivery slot is no longer available", detailsOK: true},
		{code: CodeCouponInvalid, status: http.StatusUnprocessableEntity, publicMsg: "coupon is invalid"},
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

func TestIsMatchesWrappedCode(t *testing.T) {
	inner := New(CodeSlotUnavailable, "slot full")
	outer := fmt.Errorf("place order: %w", inner)
	if !Is(outer, CodeSlotUnavailable) {
		t.Fatalf("expected wrapped error to match slot code")
	}
	if Is(outer, CodeEmptyCart) {
		t.Fatalf("did not expect empty cart match")
	}
	if Is(stdErrors.New("plain"), CodeInternal) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestDumpClassifiesPostgresErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		class     string
		retryable bool
	}{
		{
			name:  "duplicate cart line",
			err:   &pgconn.PgError{Code: "23505", ConstraintName: "cart_items_user_product_variation_key", TableName: "cart_items"},
			class: "unique_violation",
		},
		{
			name:  "slot over capacity",
			err:   &pq.Error{Code: "23514", Constraint: "delivery_slots_check", Table: "delivery_slots"},
			class: "check_violation",
		},
		{
			name:      "concurrent checkout",
			err:       &pgconn.PgError{Code: "40001", Message: "could not serialize access"},
			class:     "serialization_failure",
			retryable: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := Wrap(CodeInternal, fmt.Errorf("reserve delivery slot: %w", tc.err), "place order")
			dump := Dump(wrapped)
			if dump.Code != CodeInternal {
				t.Fatalf("expected internal code, got %q", dump.Code)
			}
			if dump.PGClass != tc.class || dump.PGRetryable != tc.retryable {
				t.Fatalf("expected class %q retryable %v, got %q %v", tc.class, tc.retryable, dump.PGClass, dump.PGRetryable)
			}
			if len(dump.Chain) != 3 {
				t.Fatalf("expected 3 chain entries, got %v", dump.Chain)
			}
		})
	}

	if plain := Dump(stdErrors.New("boom")); plain.PGCode != "" || plain.PGClass != "" {
		t.Fatalf("expected no postgres fields, got %+v", plain)
	}
}
