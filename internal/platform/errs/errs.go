// Package errs defines the error taxonomy shared by repositories, services,
// and HTTP handlers. Repositories translate driver failures into one of these
// kinds so callers can distinguish "not found" from "database down" without
// inspecting pgx internals.
package errs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies an error for callers and for HTTP status mapping.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: a lookup, update, or delete matched zero rows.
	KindNotFound
	// KindConflict: a constraint or integrity violation (unique, foreign key).
	KindConflict
	// KindUnavailable: the store could not be reached.
	KindUnavailable
	// KindInvalid: the input failed validation before reaching the store.
	KindInvalid
	// KindInvalidTransition: a lifecycle operation was applied to a record
	// whose current status does not permit it.
	KindInvalidTransition
	// KindInsufficientStock: a stock mutation would drive inventory negative.
	KindInsufficientStock
	// KindUnauthorized: credentials were missing or wrong.
	KindUnauthorized
)

// Error carries a Kind alongside a message and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// E constructs an Error of the given kind.
func E(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error of the given kind around a cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// NotFound reports a zero-row result for the named entity.
func NotFound(entity string) *Error {
	return E(KindNotFound, "%s not found", entity)
}

// Invalid reports a validation failure.
func Invalid(format string, args ...interface{}) *Error {
	return E(KindInvalid, format, args...)
}

// InvalidTransition reports a disallowed status change.
func InvalidTransition(entity, from, to string) *Error {
	return E(KindInvalidTransition, "%s cannot move from %s to %s", entity, from, to)
}

// InsufficientStock reports that a decrement would exceed available stock.
func InsufficientStock(medication string) *Error {
	return E(KindInsufficientStock, "insufficient stock for medication %s", medication)
}

// KindOf extracts the Kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether the error chain contains an Error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FromStore maps a pgx/pgconn error onto the taxonomy. entity names the
// record being operated on and appears in not-found messages.
func FromStore(err error, entity string) error {
	if err == nil {
		return nil
	}
	// Already classified; do not re-wrap.
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(KindNotFound, err, "%s not found", entity)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23 covers integrity violations: unique, foreign key, check.
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23" {
			return Wrap(KindConflict, err, "constraint violation on %s", entity)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindUnavailable, err, "store unreachable for %s", entity)
	}
	if pgconn.Timeout(err) {
		return Wrap(KindUnavailable, err, "store timeout for %s", entity)
	}

	return Wrap(KindUnknown, err, "storage failure on %s", entity)
}

// HTTPStatus maps an error chain to the status code handlers should return.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidTransition, KindInsufficientStock:
		return http.StatusConflict
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
