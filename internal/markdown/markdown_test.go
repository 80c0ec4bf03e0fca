// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains []string
	}{
		{name: "heading with id", source: "# Hello World", contains: []string{`<h1 id="hello-world">Hello World</h1>`}},
		{name: "emphasis", source: "some *em* and **strong**", contains: []string{"<em>em</em>", "<strong>strong</strong>"}},
		{name: "gfm table", source: "| a | b |\n|---|---|\n| 1 | 2 |", contains: []string{"<table>", "<td>1</td>"}},
		{name: "strikethrough", source: "~~gone~~", contains: []string{"<del>gone</del>"}},
		{name: "fenced code is highlighted", source: "```go\nfunc main() {}\n```", contains: []string{"<pre", "func"}},
		{name: "empty body", source: "", contains: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output %q does not contain %q", got, want)
				}
			}
		})
	}
}

func TestToHTMLEscapesRawHTML(t *testing.T) {
	got, err := ToHTML("before\n\n<script>alert(1)</script>\n\nafter")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML passed through: %q", got)
	}
}
