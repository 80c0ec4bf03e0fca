// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"github.com/google/uuid"

	"blogstore/internal/models"
)

// ResolveCategoryTree returns c followed by all of its descendants in
// pre-order: each category comes before its own children, and children are
// visited in the order of their Children slice. A nil Children slice is an
// empty one.
//
// The walk assumes the tree is acyclic and does not guard against cycles;
// the service refuses to create them (see ErrCategoryCycle).
func ResolveCategoryTree(c *models.Category) []*models.Category {
	if c == nil {
		return nil
	}
	result := []*models.Category{c}
	for _, child := range c.Children {
		result = append(result, ResolveCategoryTree(child)...)
	}
	return result
}

// CategoryIDs returns the ids of cats, preserving order.
func CategoryIDs(cats []*models.Category) []uuid.UUID {
	ids := make([]uuid.UUID, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	return ids
}
