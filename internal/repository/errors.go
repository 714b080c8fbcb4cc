// Package repository holds the storage side of the menu: the postgres
// repositories, the in-memory store used for local runs and tests, and the
// sentinel errors both of them return. Handlers translate the sentinels into
// HTTP codes: ErrNotFound -> 404, ErrConstraintViolation -> 409/500,
// ErrTransient -> 503.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when the referenced parent or entity does not
// exist or is inactive.
var ErrNotFound = errors.New("not found")

// ErrConstraintViolation is returned when a write would duplicate a
// (parent, position) or (parent, name) pair among active rows, or break a
// check constraint.
var ErrConstraintViolation = errors.New("constraint violation")

// ErrTransient marks connection and timeout failures. The whole request may
// be retried once.
var ErrTransient = errors.New("transient store error")

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateCheckViolation      = "23514"
	sqlStateDeadlockDetected    = "40P01"
	sqlStateSerialization       = "40001"
)

// classify maps driver errors onto the sentinels, keeping the original wrapped.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation, sqlStateCheckViolation:
			return fmt.Errorf("%w (%s): %w", ErrConstraintViolation, pgErr.ConstraintName, err)
		case sqlStateForeignKeyViolation:
			return fmt.Errorf("%w (%s): %w", ErrNotFound, pgErr.ConstraintName, err)
		case sqlStateDeadlockDetected, sqlStateSerialization:
			return fmt.Errorf("%w: %w", ErrTransient, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}
