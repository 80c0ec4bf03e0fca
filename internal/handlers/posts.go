// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogstore/internal/markdown"
	"blogstore/internal/models"
)

// postResponse is a single post together with its rendered body.
type postResponse struct {
	*models.Post
	BodyHTML string `json:"body_html"`
}

// writePost renders the post body and writes the post as JSON.
func writePost(w http.ResponseWriter, r *http.Request, status int, p *models.Post) {
	html, err := markdown.ToHTML(p.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, postResponse{Post: p, BodyHTML: html})
}

// PostsList returns one page of posts and the total count.
func (a *API) PostsList(w http.ResponseWriter, r *http.Request) {
	start, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	posts, err := a.blog.ListPosts(r.Context(), start, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	total, err := a.blog.CountAllPosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if posts == nil {
		posts = []*models.Post{}
	}
	writeJSON(w, http.StatusOK, postPage{Posts: posts, Total: total, Start: start, Limit: limit})
}

// PostsCount returns the total number of posts.
func (a *API) PostsCount(w http.ResponseWriter, r *http.Request) {
	count, err := a.blog.CountAllPosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// PostGet returns one post.
func (a *API) PostGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	post, err := a.blog.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePost(w, r, http.StatusOK, post)
}

// PostBySlug returns the post with the {slug} URL parameter.
func (a *API) PostBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := a.blog.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePost(w, r, http.StatusOK, post)
}

// PostCreate creates a post. The slug defaults to one derived from the
// title and published_at defaults to now.
func (a *API) PostCreate(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.validateRequest(&req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := a.blog.CreatePost(r.Context(), req.post())
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/posts/"+created.ID.String())
	writePost(w, r, http.StatusCreated, created)
}

// PostUpdate replaces a post's fields and category links.
func (a *API) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.validateRequest(&req); err != nil {
		writeError(w, r, err)
		return
	}

	current, err := a.blog.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p := req.post()
	p.ID = id
	if req.PublishedAt == nil {
		p.PublishedAt = current.PublishedAt
	}

	updated, err := a.blog.UpdatePost(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePost(w, r, http.StatusOK, updated)
}

// PostDelete removes a post.
func (a *API) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.blog.DeletePost(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req *postRequest) post() *models.Post {
	p := &models.Post{
		Title:       req.Title,
		Slug:        req.Slug,
		Body:        req.Body,
		CategoryIDs: req.CategoryIDs,
	}
	if req.PublishedAt != nil {
		p.PublishedAt = req.PublishedAt.UTC()
	}
	return p
}
