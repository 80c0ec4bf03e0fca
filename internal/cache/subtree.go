// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// subtree.go caches the id set of a category and all of its descendants, so
// listing the posts of a category does not reload the subtree every time.
// The cache is best-effort: errors are logged and reported as misses.
package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// subtreeKeyPrefix is the Valkey key prefix for cached subtrees.
	subtreeKeyPrefix = "category:subtree:"

	// DefaultSubtreeTTL is how long a resolved subtree stays cached.
	DefaultSubtreeTTL = 10 * time.Minute
)

// SubtreeCache stores resolved category id sets in Valkey. A nil
// *SubtreeCache is valid and never hits.
type SubtreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSubtreeCache creates a subtree cache backed by the given Valkey client.
func NewSubtreeCache(client *redis.Client, ttl time.Duration) *SubtreeCache {
	if ttl == 0 {
		ttl = DefaultSubtreeTTL
	}
	return &SubtreeCache{client: client, ttl: ttl}
}

// SubtreeKey returns the Valkey key for the subtree rooted at categoryID.
func SubtreeKey(categoryID uuid.UUID) string {
	return subtreeKeyPrefix + categoryID.String()
}

// Get returns the cached id set for categoryID.
func (sc *SubtreeCache) Get(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, bool) {
	if sc == nil {
		return nil, false
	}

	val, err := sc.client.Get(ctx, SubtreeKey(categoryID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("subtree cache get error", "category_id", categoryID, "error", err)
		return nil, false
	}

	ids, err := decodeIDs(val)
	if err != nil {
		slog.Warn("subtree cache corrupt entry", "category_id", categoryID, "error", err)
		return nil, false
	}
	slog.Debug("subtree cache hit", "category_id", categoryID, "size", len(ids))
	return ids, true
}

// Set stores the id set for categoryID with the configured TTL.
func (sc *SubtreeCache) Set(ctx context.Context, categoryID uuid.UUID, ids []uuid.UUID) {
	if sc == nil {
		return
	}
	if err := sc.client.Set(ctx, SubtreeKey(categoryID), encodeIDs(ids), sc.ttl).Err(); err != nil {
		slog.Warn("subtree cache set error", "category_id", categoryID, "error", err)
	}
}

// InvalidateAll removes every cached subtree. Any change to the hierarchy
// can affect the subtree of every ancestor, so entries are not dropped
// individually.
func (sc *SubtreeCache) InvalidateAll(ctx context.Context) {
	if sc == nil {
		return
	}

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := sc.client.Scan(ctx, cursor, subtreeKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("subtree cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := sc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("subtree cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	slog.Debug("subtree cache cleared", "deleted", deleted)
}

// encodeIDs serializes ids as a comma separated list, preserving order.
func encodeIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

func decodeIDs(s string) ([]uuid.UUID, error) {
	if s == "" {
		return []uuid.UUID{}, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]uuid.UUID, len(parts))
	for i, p := range parts {
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
