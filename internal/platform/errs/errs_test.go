package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestKindOf(t *testing.T) {
	err := NotFound("patient")
	if KindOf(err) != KindNotFound {
		t.Errorf("expected KindNotFound, got %v", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain error should map to KindUnknown")
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("fill prescription: %w", InvalidTransition("prescription", "FILLED", "FILLED"))
	if !Is(err, KindInvalidTransition) {
		t.Error("expected KindInvalidTransition through wrapping")
	}
}

func TestFromStore_NoRows(t *testing.T) {
	err := FromStore(pgx.ErrNoRows, "medication")
	if !Is(err, KindNotFound) {
		t.Errorf("expected KindNotFound, got %v", KindOf(err))
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Error("expected pgx.ErrNoRows to survive wrapping")
	}
}

func TestFromStore_ConstraintViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503"} // foreign_key_violation
	err := FromStore(pgErr, "prescription")
	if !Is(err, KindConflict) {
		t.Errorf("expected KindConflict, got %v", KindOf(err))
	}
}

func TestFromStore_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505"}
	if !Is(FromStore(pgErr, "user"), KindConflict) {
		t.Error("unique violation should map to KindConflict")
	}
}

func TestFromStore_Nil(t *testing.T) {
	if FromStore(nil, "x") != nil {
		t.Error("nil in should be nil out")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("patient"), http.StatusNotFound},
		{Invalid("quantity must be positive"), http.StatusBadRequest},
		{InvalidTransition("prescription", "FILLED", "FILLED"), http.StatusConflict},
		{InsufficientStock("M2"), http.StatusConflict},
		{E(KindConflict, "duplicate username"), http.StatusConflict},
		{E(KindUnauthorized, "bad credentials"), http.StatusUnauthorized},
		{E(KindUnavailable, "down"), http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := InvalidTransition("restock request", "APPROVED", "REJECTED")
	want := "restock request cannot move from APPROVED to REJECTED"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
