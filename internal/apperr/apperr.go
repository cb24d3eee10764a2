// Package apperr carries the error taxonomy shared by repositories, services
// and the HTTP boundary. Repositories return the sentinels below wrapped with
// context; services add ValidationError/BusError on top; handlers map the
// whole set to status codes with HTTPStatus.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrConflict          = errors.New("conflict")
	ErrForeignKey        = errors.New("foreign key violation")
	ErrForbidden         = errors.New("forbidden")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func Validation(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// BusError marks a failure to publish on the event bus. Handlers surface it
// as 503 so callers know the write happened but downstream propagation may
// not have.
type BusError struct {
	Err error
}

func (e *BusError) Error() string { return fmt.Sprintf("event bus: %v", e.Err) }
func (e *BusError) Unwrap() error { return e.Err }

// FromPg translates pgx-level errors into repository sentinels. Anything
// unrecognized passes through wrapped so the store detail is preserved.
func FromPg(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, ErrAlreadyExists)
		case "23503":
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, ErrForeignKey)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func HTTPStatus(err error) int {
	var ve *ValidationError
	var be *BusError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &be):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, ErrForeignKey):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
