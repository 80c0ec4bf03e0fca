// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// table.go declares how an entity type maps onto a PostgreSQL table. Each
// entity declares its columns, the subset the store may write, and the
// relations loaded or saved alongside the row.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"blogstore/internal/models"
)

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Querier is the subset of *sql.Tx used by the store.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Relation loads or saves data that lives outside the entity's own row.
type Relation[T models.Entity] struct {
	Name string

	// Load populates the relation on an entity read from the table.
	Load func(ctx context.Context, q Querier, e T) error

	// Save persists the relation for the entity with the given id after its
	// row was inserted or updated. Nil for read-only relations.
	Save func(ctx context.Context, q Querier, id uuid.UUID, e T) error
}

// Table maps entity type T onto a table.
type Table[T models.Entity] struct {
	Name string

	// Columns lists every selected column in Scan order. The first column
	// must be the "id" identity column.
	Columns []string

	// Writable lists the columns set on insert and update, in Values order.
	Writable []string

	// Touch names a timestamp column set to NOW() on every update.
	Touch string

	Values    func(e T) []any
	Scan      func(s Scanner) (T, error)
	Relations []Relation[T]
}

// ColumnList returns the comma separated column list, each column qualified
// with alias when alias is not empty. Named queries use it to project rows
// the table's Scan function can read.
func (t *Table[T]) ColumnList(alias string) string {
	if alias == "" {
		return strings.Join(t.Columns, ", ")
	}
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func (t *Table[T]) selectSQL() string {
	return "SELECT " + t.ColumnList("") + " FROM " + t.Name
}

func (t *Table[T]) insertSQL() string {
	placeholders := make([]string, len(t.Writable))
	for i := range t.Writable {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		t.Name, strings.Join(t.Writable, ", "), strings.Join(placeholders, ", "))
}

// updateSQL binds the writable columns to $1..$n and the id to $n+1.
func (t *Table[T]) updateSQL() string {
	sets := make([]string, 0, len(t.Writable)+1)
	for i, c := range t.Writable {
		sets = append(sets, c+" = $"+strconv.Itoa(i+1))
	}
	if t.Touch != "" {
		sets = append(sets, t.Touch+" = NOW()")
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING id",
		t.Name, strings.Join(sets, ", "), len(t.Writable)+1)
}

func (t *Table[T]) deleteSQL() string {
	return "DELETE FROM " + t.Name + " WHERE id = $1"
}

func (t *Table[T]) countSQL() string {
	return "SELECT COUNT(*) FROM " + t.Name
}

// pageClause returns the LIMIT/OFFSET suffix for a paginated query.
// A start or limit of zero (or less) means "unset": limit 0 returns every
// row, it never requests zero rows.
func pageClause(start, limit int) string {
	var b strings.Builder
	if limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(limit))
	}
	if start > 0 {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(start))
	}
	return b.String()
}
