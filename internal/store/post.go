// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"blogstore/internal/models"
)

// PostTable returns the mapping of models.Post onto the posts table. The
// post's categories live in post_categories and are loaded with every post.
func PostTable() *Table[*models.Post] {
	return &Table[*models.Post]{
		Name:     "posts",
		Columns:  []string{"id", "title", "slug", "body", "published_at", "created_at", "updated_at"},
		Writable: []string{"title", "slug", "body", "published_at"},
		Touch:    "updated_at",
		Values: func(p *models.Post) []any {
			return []any{p.Title, p.Slug, p.Body, p.PublishedAt}
		},
		Scan: scanPost,
		Relations: []Relation[*models.Post]{
			{Name: "categories", Load: loadPostCategories, Save: savePostCategories},
		},
	}
}

// scanPost scans a row into a Post struct.
func scanPost(scanner Scanner) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Body,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func loadPostCategories(ctx context.Context, q Querier, p *models.Post) error {
	rows, err := q.QueryContext(ctx, `
		SELECT category_id FROM post_categories
		WHERE post_id = $1
		ORDER BY category_id
	`, p.ID)
	if err != nil {
		return fmt.Errorf("query post categories: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan post category: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	p.CategoryIDs = ids
	return nil
}

// savePostCategories replaces the post's category set with p.CategoryIDs.
func savePostCategories(ctx context.Context, q Querier, id uuid.UUID, p *models.Post) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("clear post categories: %w", err)
	}
	if len(p.CategoryIDs) == 0 {
		return nil
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO post_categories (post_id, category_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`, id, p.CategoryIDs)
	if err != nil {
		return fmt.Errorf("insert post categories: %w", err)
	}
	return nil
}
