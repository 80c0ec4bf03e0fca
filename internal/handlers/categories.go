// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogstore/internal/models"
)

type postPage struct {
	Posts []*models.Post `json:"posts"`
	Total int64          `json:"total"`
	Start int            `json:"start"`
	Limit int            `json:"limit"`
}

// CategoriesList returns the top-level categories with their subtrees.
func (a *API) CategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := a.blog.GetTopLevelCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// CategoryGet returns one category with its subtree.
func (a *API) CategoryGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	category, err := a.blog.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// CategoryBySlug returns the category with the {slug} URL parameter.
func (a *API) CategoryBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := a.blog.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// CategoryCreate creates a category, optionally below parent_id.
func (a *API) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.validateRequest(&req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := a.blog.CreateCategory(r.Context(), &models.Category{
		Name:     req.Name,
		Slug:     req.Slug,
		ParentID: req.ParentID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/categories/"+created.ID.String())
	writeJSON(w, http.StatusCreated, created)
}

// CategoryUpdate renames a category and may re-parent it.
func (a *API) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.validateRequest(&req); err != nil {
		writeError(w, r, err)
		return
	}

	current, err := a.blog.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	current.Name = req.Name
	current.Slug = req.Slug
	current.ParentID = req.ParentID

	updated, err := a.blog.UpdateCategory(r.Context(), current)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// CategoryMove re-parents a category. A null parent_id makes it top level.
func (a *API) CategoryMove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	moved, err := a.blog.MoveCategory(r.Context(), id, req.ParentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moved)
}

// CategoryDelete removes a category and all of its descendants.
func (a *API) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.blog.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CategoryPosts lists the posts in a category or any of its descendants,
// newest first, with the total count for paging.
func (a *API) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	posts, err := a.blog.GetPostsForCategoryAndChildrenPage(r.Context(), id, start, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	total, err := a.blog.CountPostsForCategoryAndChildren(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if posts == nil {
		posts = []*models.Post{}
	}
	writeJSON(w, http.StatusOK, postPage{Posts: posts, Total: total, Start: start, Limit: limit})
}
