// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Queries is a registry of named, pre-authored SQL queries. Queries are
// usually registered once at startup and looked up by name on every call.
// Bindings are referenced as @name in the SQL text. A named query must not
// carry its own LIMIT/OFFSET, since paginated execution appends them.
type Queries struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewQueries creates an empty query registry.
func NewQueries() *Queries {
	return &Queries{entries: make(map[string]string)}
}

// Register adds a named query. Registering the same name twice is an error.
func (q *Queries) Register(name, sql string) error {
	if name == "" || strings.TrimSpace(sql) == "" {
		return fmt.Errorf("register query %q: name and sql are required", name)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.entries[name]; exists {
		return fmt.Errorf("register query %q: already registered", name)
	}
	q.entries[name] = strings.TrimSpace(sql)
	slog.Debug("named query registered", "name", name)
	return nil
}

// Lookup returns the SQL registered under name, or ErrUnknownQuery.
func (q *Queries) Lookup(name string) (string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	sql, ok := q.entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuery, name)
	}
	return sql, nil
}

// Names returns the registered query names in sorted order.
func (q *Queries) Names() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	names := make([]string, 0, len(q.entries))
	for name := range q.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
