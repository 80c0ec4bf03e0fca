// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"github.com/google/uuid"

	"blogstore/internal/models"
	"blogstore/internal/slug"
)

// PostSlug derives a slug from the post title. Titles that produce no slug
// characters get "post-" and the first eight hex digits of the post id, or
// of a fresh id for a post not yet stored.
func PostSlug(p *models.Post) string {
	return slug.GenerateOr(p.Title, "post-"+shortID(p.ID))
}

// CategorySlug is PostSlug for category names.
func CategorySlug(c *models.Category) string {
	return slug.GenerateOr(c.Name, "category-"+shortID(c.ID))
}

func shortID(id uuid.UUID) string {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return id.String()[:8]
}
