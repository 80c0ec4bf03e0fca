// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"blogstore/internal/models"
)

func TestPostSlug(t *testing.T) {
	id := uuid.MustParse("1a2b3c4d-0000-4000-8000-000000000000")

	tests := []struct {
		name string
		post *models.Post
		want string
	}{
		{name: "latin title", post: &models.Post{ID: id, Title: "Hello World"}, want: "hello-world"},
		{name: "cyrillic title", post: &models.Post{ID: id, Title: "Привет мир"}, want: "post-1a2b3c4d"},
		{name: "only symbols", post: &models.Post{ID: id, Title: "!!!"}, want: "post-1a2b3c4d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PostSlug(tt.post); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSlugFallbackForNewEntities(t *testing.T) {
	a := PostSlug(&models.Post{Title: "日本語のブログ"})
	b := PostSlug(&models.Post{Title: "日本語のブログ"})
	if !strings.HasPrefix(a, "post-") || len(a) != len("post-")+8 {
		t.Errorf("got %q, want post-<8 hex>", a)
	}
	if a == b {
		t.Errorf("new posts should not share a fallback slug: %q", a)
	}

	id := uuid.MustParse("99887766-0000-4000-8000-000000000000")
	if got := CategorySlug(&models.Category{ID: id, Name: "Категория"}); got != "category-99887766" {
		t.Errorf("CategorySlug: got %q", got)
	}
	if got := CategorySlug(&models.Category{Name: "Go Tips"}); got != "go-tips" {
		t.Errorf("CategorySlug: got %q", got)
	}
}
