// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when an update or delete targets a missing row.
	// Get reports a missing row as absence instead.
	ErrNotFound = errors.New("entity not found")

	// ErrNoResult is returned when a count query yields no scalar at all.
	// A count of zero is a valid result and never produces this error.
	ErrNoResult = errors.New("query returned no result")

	// ErrUnknownQuery is returned when a named query is not registered.
	ErrUnknownQuery = errors.New("unknown named query")

	// ErrTransactionRequired is returned when a store operation is called
	// with a context that does not carry an active transaction.
	ErrTransactionRequired = errors.New("active transaction required")
)

// PersistenceError reports a store-level rejection: a constraint violation,
// a connectivity failure or any other driver error.
type PersistenceError struct {
	Op         string // e.g. "delete categories"
	Code       string // SQLSTATE, empty if the error did not come from PostgreSQL
	Constraint string
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s: %v (constraint %s)", e.Op, e.Err, e.Constraint)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsConstraintViolation reports whether PostgreSQL rejected the statement
// because of an integrity constraint (SQLSTATE class 23).
func (e *PersistenceError) IsConstraintViolation() bool {
	return strings.HasPrefix(e.Code, "23")
}

// persistenceError wraps err into a *PersistenceError, extracting the
// PostgreSQL error details when available.
func persistenceError(op string, err error) error {
	pe := &PersistenceError{Op: op, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		pe.Code = pgErr.Code
		pe.Constraint = pgErr.ConstraintName
	}
	return pe
}
