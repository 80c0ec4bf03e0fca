package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// seedCategory describes a category created on first start in development.
type seedCategory struct {
	name     string
	slug     string
	children []seedCategory
}

var seedTree = []seedCategory{
	{name: "Programming", slug: "programming", children: []seedCategory{
		{name: "Go", slug: "go", children: []seedCategory{
			{name: "Concurrency", slug: "go-concurrency"},
		}},
		{name: "Databases", slug: "databases"},
	}},
	{name: "Travel", slug: "travel"},
}

// Seed populates the database with an initial category tree for development.
// It does nothing if any category exists already.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	err := InTx(context.Background(), db, func(ctx context.Context) error {
		tx, _ := TxFromContext(ctx)
		for i, c := range seedTree {
			if err := insertSeedCategory(ctx, tx, c, nil, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("database seeded with default categories", "roots", len(seedTree))
	return nil
}

// insertSeedCategory inserts c below parentID, then its children in order.
func insertSeedCategory(ctx context.Context, tx *sql.Tx, c seedCategory, parentID *string, order int) error {
	var id string
	err := tx.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, parent_id, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.name, c.slug, parentID, order).Scan(&id)
	if err != nil {
		return fmt.Errorf("seed insert category %q: %w", c.slug, err)
	}

	for i, child := range c.children {
		if err := insertSeedCategory(ctx, tx, child, &id, i); err != nil {
			return err
		}
	}
	return nil
}
