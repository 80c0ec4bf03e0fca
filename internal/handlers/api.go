// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API over the blog service.
package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"blogstore/internal/models"
)

// BlogService is the subset of blog.Service the API needs.
type BlogService interface {
	GetTopLevelCategories(ctx context.Context) ([]*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	MoveCategory(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetPostsForCategoryAndChildrenPage(ctx context.Context, categoryID uuid.UUID, start, limit int) ([]*models.Post, error)
	CountPostsForCategoryAndChildren(ctx context.Context, categoryID uuid.UUID) (int64, error)

	ListPosts(ctx context.Context, start, limit int) ([]*models.Post, error)
	CountAllPosts(ctx context.Context) (int64, error)
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	CreatePost(ctx context.Context, p *models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, p *models.Post) (*models.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
}

// API groups the JSON handlers for categories and posts.
type API struct {
	blog     BlogService
	validate *validator.Validate
}

// NewAPI creates the API handler group backed by blog.
func NewAPI(blog BlogService) *API {
	return &API{
		blog:     blog,
		validate: newValidator(),
	}
}
