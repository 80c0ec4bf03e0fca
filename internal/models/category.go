// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a hierarchical post category. A category without a
// parent is a root (top-level) category.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parent_id"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Children is populated by the store when the category is loaded.
	Children []*Category `json:"children,omitempty"`
}

// EntityID implements Entity.
func (c *Category) EntityID() uuid.UUID { return c.ID }

// IsRoot returns true if the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// AddChild attaches child below c, setting its parent reference. The child
// is only persisted once it is created or updated through the store.
func (c *Category) AddChild(child *Category) {
	id := c.ID
	child.ParentID = &id
	c.Children = append(c.Children, child)
}
