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

var categoryColumns = []string{"id", "name", "slug", "parent_id", "sort_order", "created_at", "updated_at"}

// CategoryTable returns the mapping of models.Category onto the categories
// table. Loading a category eagerly loads its whole subtree into Children.
func CategoryTable() *Table[*models.Category] {
	return &Table[*models.Category]{
		Name:     "categories",
		Columns:  categoryColumns,
		Writable: []string{"name", "slug", "parent_id", "sort_order"},
		Touch:    "updated_at",
		Values: func(c *models.Category) []any {
			return []any{c.Name, c.Slug, c.ParentID, c.SortOrder}
		},
		Scan: scanCategory,
		Relations: []Relation[*models.Category]{
			{Name: "children", Load: loadChildren},
		},
	}
}

// scanCategory scans a row into a Category struct.
func scanCategory(scanner Scanner) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.ParentID,
		&c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// subtreeQuery selects every descendant of $1 in one round trip. UNION
// (rather than UNION ALL) discards rows already seen, so the recursion
// terminates even on corrupted, cyclic data.
var subtreeQuery = `
	WITH RECURSIVE subtree AS (
		SELECT ` + categoryColumnList("c") + ` FROM categories c WHERE c.parent_id = $1
		UNION
		SELECT ` + categoryColumnList("c") + ` FROM categories c
		JOIN subtree s ON c.parent_id = s.id
	)
	SELECT ` + categoryColumnList("") + ` FROM subtree
	ORDER BY sort_order, name`

func categoryColumnList(alias string) string {
	t := Table[*models.Category]{Columns: categoryColumns}
	return t.ColumnList(alias)
}

// loadChildren fetches the subtree below c and attaches it to c.Children.
func loadChildren(ctx context.Context, q Querier, c *models.Category) error {
	rows, err := q.QueryContext(ctx, subtreeQuery, c.ID)
	if err != nil {
		return fmt.Errorf("query subtree: %w", err)
	}
	defer rows.Close()

	var flat []*models.Category
	for rows.Next() {
		child, err := scanCategory(rows)
		if err != nil {
			return fmt.Errorf("scan category: %w", err)
		}
		flat = append(flat, child)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	c.Children = buildChildren(flat, c.ID)
	return nil
}

// buildChildren links a flat list of descendants into a tree below rootID by
// indexing rows on their parent id. Sibling order follows the input order.
// Each row is attached at most once and the root is never re-attached, so the
// result is a finite tree even if the rows describe a cycle.
func buildChildren(flat []*models.Category, rootID uuid.UUID) []*models.Category {
	byParent := make(map[uuid.UUID][]*models.Category)
	for _, c := range flat {
		if c.ParentID != nil {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}

	attached := map[uuid.UUID]bool{rootID: true}
	var attach func(parentID uuid.UUID) []*models.Category
	attach = func(parentID uuid.UUID) []*models.Category {
		var result []*models.Category
		for _, c := range byParent[parentID] {
			if attached[c.ID] {
				continue
			}
			attached[c.ID] = true
			c.Children = attach(c.ID)
			result = append(result, c)
		}
		return result
	}
	return attach(rootID)
}
