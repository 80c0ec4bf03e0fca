// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"blogstore/internal/database"
	"blogstore/internal/models"
)

// Repository provides entity-agnostic persistence operations for one entity
// type, plus execution of registered named queries returning that type.
//
// Every method requires ctx to carry an active transaction (see
// database.InTx) and fails with ErrTransactionRequired otherwise. The
// repository never begins or commits a transaction itself.
type Repository[T models.Entity] struct {
	table   *Table[T]
	queries *Queries
}

// NewRepository creates a Repository for the given table mapping. Named
// queries are resolved against queries.
func NewRepository[T models.Entity](table *Table[T], queries *Queries) *Repository[T] {
	return &Repository[T]{table: table, queries: queries}
}

// Table returns the mapping the repository was built with.
func (r *Repository[T]) Table() *Table[T] {
	return r.table
}

// querier returns the active transaction carried by ctx.
func (r *Repository[T]) querier(ctx context.Context) (Querier, error) {
	tx, ok := database.TxFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%s: %w", r.table.Name, ErrTransactionRequired)
	}
	return tx, nil
}

// Create inserts a transient entity, saves its relations, then reloads it so
// database defaults (id, timestamps) are populated, and returns the reloaded
// entity. An id already set on e is ignored.
func (r *Repository[T]) Create(ctx context.Context, e T) (T, error) {
	var zero T
	q, err := r.querier(ctx)
	if err != nil {
		return zero, err
	}

	var id uuid.UUID
	if err := q.QueryRowContext(ctx, r.table.insertSQL(), r.table.Values(e)...).Scan(&id); err != nil {
		return zero, persistenceError("create "+r.table.Name, err)
	}
	if err := r.saveRelations(ctx, q, id, e); err != nil {
		return zero, err
	}

	created, found, err := r.load(ctx, q, id)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, fmt.Errorf("refresh %s %s: %w", r.table.Name, id, ErrNotFound)
	}

	slog.Debug("entity created", "table", r.table.Name, "id", id)
	return created, nil
}

// Get returns the entity with the given id. The boolean is false when no
// such row exists; that is not an error.
func (r *Repository[T]) Get(ctx context.Context, id uuid.UUID) (T, bool, error) {
	var zero T
	q, err := r.querier(ctx)
	if err != nil {
		return zero, false, err
	}
	return r.load(ctx, q, id)
}

// Update writes the entity's fields to its existing row, saves relations and
// returns the reloaded entity. Returns ErrNotFound if the id does not exist.
func (r *Repository[T]) Update(ctx context.Context, e T) (T, error) {
	var zero T
	q, err := r.querier(ctx)
	if err != nil {
		return zero, err
	}

	id := e.EntityID()
	args := append(r.table.Values(e), id)
	var updated uuid.UUID
	err = q.QueryRowContext(ctx, r.table.updateSQL(), args...).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("update %s %s: %w", r.table.Name, id, ErrNotFound)
	}
	if err != nil {
		return zero, persistenceError("update "+r.table.Name, err)
	}
	if err := r.saveRelations(ctx, q, id, e); err != nil {
		return zero, err
	}

	result, found, err := r.load(ctx, q, id)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, fmt.Errorf("refresh %s %s: %w", r.table.Name, id, ErrNotFound)
	}

	slog.Debug("entity updated", "table", r.table.Name, "id", id)
	return result, nil
}

// Delete removes the row with the given id. Returns ErrNotFound if no row
// matched, or a *PersistenceError if a constraint prevents the delete.
func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	q, err := r.querier(ctx)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, r.table.deleteSQL(), id)
	if err != nil {
		return persistenceError("delete "+r.table.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistenceError("delete "+r.table.Name, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s %s: %w", r.table.Name, id, ErrNotFound)
	}

	slog.Debug("entity deleted", "table", r.table.Name, "id", id)
	return nil
}

// GetAll returns every row of the table in storage order.
// This may be expensive on large tables; prefer GetAllSubset.
func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	q, err := r.querier(ctx)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, q, "list "+r.table.Name, r.table.selectSQL())
}

// CountAll returns the number of rows in the table.
func (r *Repository[T]) CountAll(ctx context.Context) (int64, error) {
	q, err := r.querier(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := q.QueryRowContext(ctx, r.table.countSQL()).Scan(&count); err != nil {
		return 0, persistenceError("count "+r.table.Name, err)
	}
	return count, nil
}

// GetAllSubset returns at most limit rows starting at the 0-based offset
// start, ordered by id so consecutive pages do not overlap. A start past the
// end yields an empty list. Zero means "unset" for both bounds.
func (r *Repository[T]) GetAllSubset(ctx context.Context, start, limit int) ([]T, error) {
	q, err := r.querier(ctx)
	if err != nil {
		return nil, err
	}
	query := r.table.selectSQL() + " ORDER BY id" + pageClause(start, limit)
	return r.list(ctx, q, "list "+r.table.Name, query)
}

// FindWithNamedQuery runs the named query with the given bindings and
// returns every result. Pass the zero Params for a query without bindings.
func (r *Repository[T]) FindWithNamedQuery(ctx context.Context, name string, params Params) ([]T, error) {
	return r.FindWithNamedQueryPage(ctx, name, params, 0, 0)
}

// FindWithNamedQueryPage runs the named query bounded by start and limit.
// Zero means "unset" for both bounds, so a caller cannot request zero rows
// through this method.
func (r *Repository[T]) FindWithNamedQueryPage(ctx context.Context, name string, params Params, start, limit int) ([]T, error) {
	query, err := r.queries.Lookup(name)
	if err != nil {
		return nil, err
	}
	q, err := r.querier(ctx)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, q, "query "+name, query+pageClause(start, limit), params.args()...)
}

// CountWithNamedQuery runs a named query that selects a single count.
// Returns ErrNoResult if the query produced no row or a NULL value.
func (r *Repository[T]) CountWithNamedQuery(ctx context.Context, name string, params Params) (int64, error) {
	query, err := r.queries.Lookup(name)
	if err != nil {
		return 0, err
	}
	q, err := r.querier(ctx)
	if err != nil {
		return 0, err
	}

	var count sql.NullInt64
	err = q.QueryRowContext(ctx, query, params.args()...).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("count %s: %w", name, ErrNoResult)
	}
	if err != nil {
		return 0, persistenceError("count "+name, err)
	}
	if !count.Valid {
		return 0, fmt.Errorf("count %s: %w", name, ErrNoResult)
	}
	return count.Int64, nil
}

// FindFirstResultWithNamedQuery returns the first row of the named query, or
// false if it has none. Up to two rows are fetched; the second is discarded
// and uniqueness is not checked.
func (r *Repository[T]) FindFirstResultWithNamedQuery(ctx context.Context, name string, params Params) (T, bool, error) {
	var zero T
	items, err := r.FindWithNamedQueryPage(ctx, name, params, 0, 2)
	if err != nil {
		return zero, false, err
	}
	if len(items) == 0 {
		return zero, false, nil
	}
	return items[0], true, nil
}

// CreateQuery runs raw SQL text and scans the results as T, so the query
// must project the table's columns in order. The text is not validated:
// never pass untrusted input.
func (r *Repository[T]) CreateQuery(ctx context.Context, rawSQL string) ([]T, error) {
	q, err := r.querier(ctx)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, q, "raw query "+r.table.Name, rawSQL)
}

// load reads a single row by id and its relations.
func (r *Repository[T]) load(ctx context.Context, q Querier, id uuid.UUID) (T, bool, error) {
	var zero T
	e, err := r.table.Scan(q.QueryRowContext(ctx, r.table.selectSQL()+" WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, persistenceError("get "+r.table.Name, err)
	}
	if err := r.loadRelations(ctx, q, e); err != nil {
		return zero, false, err
	}
	return e, true, nil
}

// list runs query and scans every row. The cursor is drained and closed
// before relations are loaded, since a connection serves one result set at
// a time.
func (r *Repository[T]) list(ctx context.Context, q Querier, op, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistenceError(op, err)
	}

	items := []T{}
	for rows.Next() {
		e, err := r.table.Scan(rows)
		if err != nil {
			rows.Close()
			return nil, persistenceError(op, err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, persistenceError(op, err)
	}
	rows.Close()

	for _, e := range items {
		if err := r.loadRelations(ctx, q, e); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *Repository[T]) loadRelations(ctx context.Context, q Querier, e T) error {
	for _, rel := range r.table.Relations {
		if rel.Load == nil {
			continue
		}
		if err := rel.Load(ctx, q, e); err != nil {
			return persistenceError("load "+r.table.Name+"."+rel.Name, err)
		}
	}
	return nil
}

func (r *Repository[T]) saveRelations(ctx context.Context, q Querier, id uuid.UUID, e T) error {
	for _, rel := range r.table.Relations {
		if rel.Save == nil {
			continue
		}
		if err := rel.Save(ctx, q, id, e); err != nil {
			return persistenceError("save "+r.table.Name+"."+rel.Name, err)
		}
	}
	return nil
}
