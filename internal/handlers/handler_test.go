// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides a fake BlogService and request helpers shared by
// the handler tests. No database is needed.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogstore/internal/blog"
	"blogstore/internal/models"
	"blogstore/internal/store"
)

// fakeBlog is an in-memory BlogService. err, when set, is returned by every
// method.
type fakeBlog struct {
	categories map[uuid.UUID]*models.Category
	posts      map[uuid.UUID]*models.Post
	err        error

	lastStart, lastLimit int
}

func newFakeBlog() *fakeBlog {
	return &fakeBlog{
		categories: make(map[uuid.UUID]*models.Category),
		posts:      make(map[uuid.UUID]*models.Post),
	}
}

func (f *fakeBlog) addCategory(name string, parent *models.Category) *models.Category {
	c := &models.Category{ID: uuid.New(), Name: name, Slug: strings.ToLower(name)}
	if parent != nil {
		parent.AddChild(c)
	}
	f.categories[c.ID] = c
	return c
}

func (f *fakeBlog) addPost(title string, published time.Time, categories ...*models.Category) *models.Post {
	p := &models.Post{
		ID:          uuid.New(),
		Title:       title,
		Slug:        strings.ToLower(title),
		PublishedAt: published,
		CategoryIDs: blog.CategoryIDs(categories),
	}
	f.posts[p.ID] = p
	return p
}

func (f *fakeBlog) GetTopLevelCategories(context.Context) ([]*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Category
	for _, c := range f.categories {
		if c.IsRoot() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeBlog) GetCategory(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeBlog) GetCategoryBySlug(_ context.Context, slug string) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeBlog) CreateCategory(_ context.Context, c *models.Category) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c.ParentID != nil {
		if _, ok := f.categories[*c.ParentID]; !ok {
			return nil, store.ErrNotFound
		}
	}
	c.ID = uuid.New()
	if c.Slug == "" {
		c.Slug = blog.CategorySlug(c)
	}
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeBlog) UpdateCategory(_ context.Context, c *models.Category) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c.ParentID != nil {
		for _, id := range blog.CategoryIDs(blog.ResolveCategoryTree(c)) {
			if id == *c.ParentID {
				return nil, blog.ErrCategoryCycle
			}
		}
	}
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeBlog) MoveCategory(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*models.Category, error) {
	c, err := f.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.ParentID = parentID
	return f.UpdateCategory(ctx, c)
}

func (f *fakeBlog) DeleteCategory(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	c, ok := f.categories[id]
	if !ok {
		return store.ErrNotFound
	}
	for _, d := range blog.ResolveCategoryTree(c) {
		delete(f.categories, d.ID)
	}
	return nil
}

func (f *fakeBlog) postsFor(id uuid.UUID) ([]*models.Post, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	ids := blog.CategoryIDs(blog.ResolveCategoryTree(c))

	var out []*models.Post
	for _, p := range f.posts {
		for _, cid := range ids {
			if p.HasCategory(cid) {
				out = append(out, p)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, nil
}

func (f *fakeBlog) GetPostsForCategoryAndChildrenPage(_ context.Context, id uuid.UUID, start, limit int) ([]*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastStart, f.lastLimit = start, limit
	posts, err := f.postsFor(id)
	if err != nil {
		return nil, err
	}
	return page(posts, start, limit), nil
}

func (f *fakeBlog) CountPostsForCategoryAndChildren(_ context.Context, id uuid.UUID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	posts, err := f.postsFor(id)
	return int64(len(posts)), err
}

func (f *fakeBlog) ListPosts(_ context.Context, start, limit int) ([]*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastStart, f.lastLimit = start, limit
	var out []*models.Post
	for _, p := range f.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return page(out, start, limit), nil
}

func (f *fakeBlog) CountAllPosts(context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.posts)), nil
}

func (f *fakeBlog) GetPost(_ context.Context, id uuid.UUID) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeBlog) GetPostBySlug(_ context.Context, slug string) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeBlog) CreatePost(_ context.Context, p *models.Post) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	p.ID = uuid.New()
	if p.Slug == "" {
		p.Slug = blog.PostSlug(p)
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}
	f.posts[p.ID] = p
	return p, nil
}

func (f *fakeBlog) UpdatePost(_ context.Context, p *models.Post) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.posts[p.ID]; !ok {
		return nil, store.ErrNotFound
	}
	f.posts[p.ID] = p
	return p, nil
}

func (f *fakeBlog) DeletePost(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func page(posts []*models.Post, start, limit int) []*models.Post {
	if start >= len(posts) {
		return nil
	}
	posts = posts[start:]
	if limit > 0 && limit < len(posts) {
		posts = posts[:limit]
	}
	return posts
}

// serve runs handler for a request with the given URL parameters set the
// way chi would set them.
func serve(t *testing.T, handler http.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func idParams(id uuid.UUID) map[string]string {
	return map[string]string{"id": id.String()}
}
