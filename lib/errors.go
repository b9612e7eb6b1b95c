package lib

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Database errors
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// Order and table errors
var (
	ErrTableBusy            = errors.New("table has an active order")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// PersistenceError wraps a failure reported by the store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PresentationError means a rendering or delivery sink was unavailable.
// The underlying data is unaffected.
type PresentationError struct {
	Sink string
	Err  error
}

func (e *PresentationError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Sink, e.Err)
}

func (e *PresentationError) Unwrap() error {
	return e.Err
}

// TransitionError carries the rejected status pair.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ConfirmationError is returned when freeing a table would complete its active order.
type ConfirmationError struct {
	TableId  uuid.UUID
	OrderId  uuid.UUID
	OrderNum string
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("table %s has active order %s, confirmation required", e.TableId, e.OrderNum)
}

func (e *ConfirmationError) Is(target error) bool {
	return target == ErrConfirmationRequired
}

// OccupancyError reports a failed free-table flow. The order is completed
// before the table is written, so the table is never updated when this is
// returned. A completed order stays completed.
type OccupancyError struct {
	OrderId        uuid.UUID
	TableId        uuid.UUID
	OrderCompleted bool
	Err            error
}

func (e *OccupancyError) Error() string {
	return fmt.Sprintf("free table %s: order completed=%t: %v", e.TableId, e.OrderCompleted, e.Err)
}

func (e *OccupancyError) Unwrap() error {
	return e.Err
}

func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var code string
	var pgxErr *pgconn.PgError
	var pgErr pgdriver.Error
	switch {
	case errors.As(err, &pgxErr):
		code = pgxErr.Code
	case errors.As(err, &pgErr):
		code = pgErr.Field('C') // SQLSTATE
	}

	switch code {
	case "23505": // unique_violation
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case "23503": // foreign_key_violation
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case "P0002": // no_data_found
		return ErrNotFound
	}
	return err
}

// Persist maps store errors and wraps anything unclassified as a PersistenceError.
func Persist(op string, err error) error {
	if err == nil {
		return nil
	}
	mapped := MapPgError(err)
	if errors.Is(mapped, ErrNotFound) || errors.Is(mapped, ErrConflict) {
		return mapped
	}
	var pe *PersistenceError
	if errors.As(mapped, &pe) {
		return mapped
	}
	return &PersistenceError{Op: op, Err: mapped}
}

// ConstraintName returns the constraint a Postgres error names, or "".
func ConstraintName(err error) string {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.ConstraintName
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('n')
	}
	return ""
}
