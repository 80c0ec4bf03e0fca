// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog implements the blog's domain operations on top of the generic
// store: posts, the category hierarchy, and "posts in a category or any of
// its subcategories".
package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"blogstore/internal/database"
	"blogstore/internal/models"
	"blogstore/internal/store"
)

// ErrCategoryCycle is returned when a change would make a category its own
// ancestor.
var ErrCategoryCycle = errors.New("category cannot be its own ancestor")

// SubtreeCache caches the resolved id set of a category and its descendants.
// Implementations must tolerate being unavailable: a miss is always safe.
type SubtreeCache interface {
	Get(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, bool)
	Set(ctx context.Context, categoryID uuid.UUID, ids []uuid.UUID)
	InvalidateAll(ctx context.Context)
}

// Service provides the blog's domain operations. Each method runs in a
// transaction, joining the one carried by ctx if there is one.
type Service struct {
	db         *sql.DB
	categories *store.Repository[*models.Category]
	posts      *store.Repository[*models.Post]
	cache      SubtreeCache
}

// New creates a blog Service backed by db. cache may be nil.
func New(db *sql.DB, cache SubtreeCache) (*Service, error) {
	queries := store.NewQueries()
	categoryTable := store.CategoryTable()
	postTable := store.PostTable()
	if err := RegisterQueries(queries, categoryTable, postTable); err != nil {
		return nil, fmt.Errorf("register blog queries: %w", err)
	}

	return &Service{
		db:         db,
		categories: store.NewRepository(categoryTable, queries),
		posts:      store.NewRepository(postTable, queries),
		cache:      cache,
	}, nil
}

// --- Posts ---

// CreatePost persists a new post. A missing slug is derived from the title
// and a zero PublishedAt defaults to now.
func (s *Service) CreatePost(ctx context.Context, p *models.Post) (*models.Post, error) {
	if p.Slug == "" {
		p.Slug = PostSlug(p)
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}

	var created *models.Post
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		var err error
		created, err = s.posts.Create(ctx, p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	slog.Info("post created", "id", created.ID, "slug", created.Slug)
	return created, nil
}

// UpdatePost writes p over the existing post with the same id.
func (s *Service) UpdatePost(ctx context.Context, p *models.Post) (*models.Post, error) {
	if p.Slug == "" {
		p.Slug = PostSlug(p)
	}

	var updated *models.Post
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		var err error
		updated, err = s.posts.Update(ctx, p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return updated, nil
}

// GetPost returns the post with the given id, or store.ErrNotFound.
func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post *models.Post
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		p, found, err := s.posts.Get(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("post %s: %w", id, store.ErrNotFound)
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// GetPostBySlug returns the post with the given slug, or store.ErrNotFound.
func (s *Service) GetPostBySlug(ctx context.Context, postSlug string) (*models.Post, error) {
	var post *models.Post
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		p, found, err := s.posts.FindFirstResultWithNamedQuery(ctx, QueryPostBySlug, store.With(paramSlug, postSlug))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("post %q: %w", postSlug, store.ErrNotFound)
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return post, nil
}

// DeletePost removes a post and its category links.
func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) error {
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		return s.posts.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	slog.Info("post deleted", "id", id)
	return nil
}

// GetAllPosts returns every post. The order is unspecified: callers that need
// chronological order must use GetPostsForCategoryAndChildren or sort.
func (s *Service) GetAllPosts(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		var err error
		posts, err = s.posts.GetAll(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get all posts: %w", err)
	}
	return posts, nil
}

// ListPosts returns one page of posts. Zero start or limit means unbounded.
func (s *Service) ListPosts(ctx context.Context, start, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		var err error
		posts, err = s.posts.GetAllSubset(ctx, start, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// CountAllPosts returns the total number of posts.
func (s *Service) CountAllPosts(ctx context.Context) (int64, error) {
	var count int64
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		var err error
		count, err = s.posts.CountAll(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// GetPostsForCategoryAndChildren returns the posts tagged with the category or
// any of its descendants, each post once, most recently published first.
// Returns store.ErrNotFound if the category does not exist.
func (s *Service) GetPostsForCategoryAndChildren(ctx context.Context, categoryID uuid.UUID) ([]*models.Post, error) {
	return s.GetPostsForCategoryAndChildrenPage(ctx, categoryID, 0, 0)
}

// GetPostsForCategoryAndChildrenPage is GetPostsForCategoryAndChildren
// bounded by start and limit. Zero means unbounded for both.
func (s *Service) GetPostsForCategoryAndChildrenPage(ctx context.Context, categoryID uuid.UUID, start, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		ids, err := s.subtreeIDs(ctx, categoryID)
		if err != nil {
			return err
		}
		posts, err = s.posts.FindWithNamedQueryPage(ctx, QueryPostsForCategories, store.With(paramCategories, ids), start, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get posts for category %s: %w", categoryID, err)
	}
	return posts, nil
}

// CountPostsForCategoryAndChildren counts the posts
// GetPostsForCategoryAndChildren would return.
func (s *Service) CountPostsForCategoryAndChildren(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		ids, err := s.subtreeIDs(ctx, categoryID)
		if err != nil {
			return err
		}
		count, err = s.posts.CountWithNamedQuery(ctx, QueryCountPostsForCategories, store.With(paramCategories, ids))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("count posts for category %s: %w", categoryID, err)
	}
	return count, nil
}

// subtreeIDs resolves the ids of a category and all of its descendants,
// consulting the cache first. Must run inside a transaction.
func (s *Service) subtreeIDs(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	if s.cache != nil {
		if ids, ok := s.cache.Get(ctx, categoryID); ok {
			return ids, nil
		}
	}

	category, found, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("category %s: %w", categoryID, store.ErrNotFound)
	}

	ids := CategoryIDs(ResolveCategoryTree(category))
	if s.cache != nil {
		s.cache.Set(ctx, categoryID, ids)
	}
	return ids, nil
}

// --- Categories ---

// GetTopLevelCategories returns the categories without a parent, each with
// its subtree loaded. No ordering is imposed.
func (s *Service) GetTopLevelCategories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		var err error
		categories, err = s.categories.FindWithNamedQuery(ctx, QueryTopLevelCategories, store.Params{})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get top level categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns the category with its subtree, or store.ErrNotFound.
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category *models.Category
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		c, found, err := s.categories.Get(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("category %s: %w", id, store.ErrNotFound)
		}
		category = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// GetCategoryBySlug returns the category with the given slug, or
// store.ErrNotFound.
func (s *Service) GetCategoryBySlug(ctx context.Context, categorySlug string) (*models.Category, error) {
	var category *models.Category
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		c, found, err := s.categories.FindFirstResultWithNamedQuery(ctx, QueryCategoryBySlug, store.With(paramSlug, categorySlug))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("category %q: %w", categorySlug, store.ErrNotFound)
		}
		category = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return category, nil
}

// CreateCategory persists a new category. A missing slug is derived from the
// name, and the category is appended after its existing siblings. The parent,
// if set, must exist.
func (s *Service) CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	if c.Slug == "" {
		c.Slug = CategorySlug(c)
	}

	var created *models.Category
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		if c.ParentID != nil {
			if _, found, err := s.categories.Get(ctx, *c.ParentID); err != nil {
				return err
			} else if !found {
				return fmt.Errorf("parent category %s: %w", *c.ParentID, store.ErrNotFound)
			}
		}

		order, err := s.categories.CountWithNamedQuery(ctx, QueryNextSortOrder, store.With(paramParent, c.ParentID))
		if err != nil {
			return err
		}
		c.SortOrder = int(order)

		created, err = s.categories.Create(ctx, c)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.invalidate(ctx)
	slog.Info("category created", "id", created.ID, "slug", created.Slug, "parent_id", created.ParentID)
	return created, nil
}

// AddChildCategory creates child below the category parentID.
func (s *Service) AddChildCategory(ctx context.Context, parentID uuid.UUID, child *models.Category) (*models.Category, error) {
	parent := &models.Category{ID: parentID}
	parent.AddChild(child)
	return s.CreateCategory(ctx, child)
}

// UpdateCategory writes c over the existing category with the same id.
// It refuses to re-parent a category below itself or one of its descendants.
func (s *Service) UpdateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	var updated *models.Category
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		var err error
		updated, err = s.updateCategory(ctx, c)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	s.invalidate(ctx)
	return updated, nil
}

// MoveCategory re-parents a category. A nil parentID makes it a root.
func (s *Service) MoveCategory(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*models.Category, error) {
	var moved *models.Category
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		c, found, err := s.categories.Get(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("category %s: %w", id, store.ErrNotFound)
		}
		c.ParentID = parentID
		moved, err = s.updateCategory(ctx, c)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("move category: %w", err)
	}

	s.invalidate(ctx)
	slog.Info("category moved", "id", id, "parent_id", parentID)
	return moved, nil
}

// updateCategory does the work of UpdateCategory inside the caller's
// transaction. Callers invalidate the subtree cache once it has committed.
func (s *Service) updateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	if c.Slug == "" {
		c.Slug = CategorySlug(c)
	}

	current, found, err := s.categories.Get(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("category %s: %w", c.ID, store.ErrNotFound)
	}

	if c.ParentID != nil {
		for _, id := range CategoryIDs(ResolveCategoryTree(current)) {
			if id == *c.ParentID {
				return nil, ErrCategoryCycle
			}
		}
		if _, found, err := s.categories.Get(ctx, *c.ParentID); err != nil {
			return nil, err
		} else if !found {
			return nil, fmt.Errorf("parent category %s: %w", *c.ParentID, store.ErrNotFound)
		}
	}

	return s.categories.Update(ctx, c)
}

// DeleteCategory removes a category together with all of its descendants.
// Descendants are deleted before their parents. If any category in the
// subtree is still referenced by a post, nothing is deleted and a
// *store.PersistenceError is returned.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	var deleted int
	err := database.InTx(ctx, s.db, func(ctx context.Context) error {
		c, found, err := s.categories.Get(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("category %s: %w", id, store.ErrNotFound)
		}

		tree := ResolveCategoryTree(c)
		for i := len(tree) - 1; i >= 0; i-- {
			if err := s.categories.Delete(ctx, tree[i].ID); err != nil {
				return err
			}
		}
		deleted = len(tree)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	s.invalidate(ctx)
	slog.Info("category deleted", "id", id, "deleted", deleted)
	return nil
}

// invalidate drops every cached subtree after the hierarchy changed.
func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
}
