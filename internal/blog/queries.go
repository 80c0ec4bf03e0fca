// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"blogstore/internal/models"
	"blogstore/internal/store"
)

// Named queries used by the blog service.
const (
	// QueryTopLevelCategories selects categories without a parent.
	QueryTopLevelCategories = "categories.getTopLevel"

	// QueryCategoryBySlug selects the category with slug @slug.
	QueryCategoryBySlug = "categories.findBySlug"

	// QueryNextSortOrder counts the sort position for a new child of
	// @parent (NULL for a root category).
	QueryNextSortOrder = "categories.nextSortOrder"

	// QueryPostsForCategories selects distinct posts tagged with any of the
	// @categories ids, most recently published first.
	QueryPostsForCategories = "posts.getPostsForCategories"

	// QueryCountPostsForCategories counts the posts QueryPostsForCategories
	// would return.
	QueryCountPostsForCategories = "posts.countForCategories"

	// QueryPostBySlug selects the post with slug @slug.
	QueryPostBySlug = "posts.findBySlug"
)

// Binding names referenced by the named queries.
const (
	paramCategories = "categories"
	paramSlug       = "slug"
	paramParent     = "parent"
)

// postsInCategories matches a post once, however many of the bound
// categories it carries.
const postsInCategories = `EXISTS (
		SELECT 1 FROM post_categories pc
		WHERE pc.post_id = p.id AND pc.category_id = ANY(@categories::uuid[])
	)`

// RegisterQueries adds the blog's named queries to q.
func RegisterQueries(q *store.Queries, categories *store.Table[*models.Category], posts *store.Table[*models.Post]) error {
	defs := []struct {
		name string
		sql  string
	}{
		{QueryTopLevelCategories, `
			SELECT ` + categories.ColumnList("") + `
			FROM categories
			WHERE parent_id IS NULL`},
		{QueryCategoryBySlug, `
			SELECT ` + categories.ColumnList("") + `
			FROM categories
			WHERE slug = @slug`},
		{QueryNextSortOrder, `
			SELECT COALESCE(MAX(sort_order) + 1, 0)
			FROM categories
			WHERE parent_id IS NOT DISTINCT FROM @parent::uuid`},
		{QueryPostsForCategories, `
			SELECT ` + posts.ColumnList("p") + `
			FROM posts p
			WHERE ` + postsInCategories + `
			ORDER BY p.published_at DESC, p.id`},
		{QueryCountPostsForCategories, `
			SELECT COUNT(*)
			FROM posts p
			WHERE ` + postsInCategories},
		{QueryPostBySlug, `
			SELECT ` + posts.ColumnList("") + `
			FROM posts
			WHERE slug = @slug`},
	}

	for _, d := range defs {
		if err := q.Register(d.name, d.sql); err != nil {
			return err
		}
	}
	return nil
}
