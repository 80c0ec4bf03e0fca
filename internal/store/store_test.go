// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"blogstore/internal/database"
	"blogstore/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogstore")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogstore")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testTx begins a transaction that is rolled back when the test finishes,
// and returns a context carrying it. Nothing a test writes survives it.
func testTx(t *testing.T, db *sql.DB) context.Context {
	t.Helper()

	// Repeatable read keeps the snapshot stable while other packages write.
	tx, err := db.BeginTx(context.Background(), &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	t.Cleanup(func() { tx.Rollback() })
	return database.WithTx(context.Background(), tx)
}

// testRepos returns category and post repositories sharing one registry.
func testRepos(queries *Queries) (*Repository[*models.Category], *Repository[*models.Post]) {
	return NewRepository(CategoryTable(), queries), NewRepository(PostTable(), queries)
}

// newCategory returns a transient category with a unique slug.
func newCategory(name string, parentID *uuid.UUID) *models.Category {
	return &models.Category{
		Name:     name,
		Slug:     "test-" + strings.ToLower(name) + "-" + uuid.NewString()[:8],
		ParentID: parentID,
	}
}

// newPost returns a transient post with a unique slug.
func newPost(title string, categoryIDs ...uuid.UUID) *models.Post {
	return &models.Post{
		Title:       title,
		Slug:        "test-" + strings.ToLower(title) + "-" + uuid.NewString()[:8],
		Body:        "<p>" + title + "</p>",
		PublishedAt: time.Now().UTC().Truncate(time.Microsecond),
		CategoryIDs: categoryIDs,
	}
}
