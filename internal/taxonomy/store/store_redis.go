package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"coursehub/internal/taxonomy/models"
	id "coursehub/pkg/domain"
)

// Reader is the lookup surface the cache decorates.
type Reader interface {
	FindActivePrimary(ctx context.Context, categoryID id.CategoryID) (*models.Category, error)
	FindActiveSecondaries(ctx context.Context, ids []id.CategoryID, parent id.CategoryID) ([]models.Category, error)
}

// RedisCache is a read-through cache in front of a taxonomy Reader. Misses
// are not cached: neither ErrNotFound on a primary nor a secondary lookup
// that resolved only part of the requested set, so a newly activated
// category is visible at once. Redis failures fall back to the underlying
// reader.
type RedisCache struct {
	next   Reader
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(next Reader, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{next: next, client: client, ttl: ttl, logger: logger}
}

func primaryKey(categoryID id.CategoryID) string {
	return "taxonomy:primary:" + categoryID.String()
}

// secondariesKey sorts ids so the same set maps to one key regardless of order.
func secondariesKey(ids []id.CategoryID, parent id.CategoryID) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, cid := range sorted {
		parts[i] = strconv.FormatInt(int64(cid), 10)
	}
	return "taxonomy:secondaries:" + parent.String() + ":" + strings.Join(parts, ",")
}

func (c *RedisCache) FindActivePrimary(ctx context.Context, categoryID id.CategoryID) (*models.Category, error) {
	key := primaryKey(categoryID)
	var cached models.Category
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}
	cat, err := c.next.FindActivePrimary(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, cat)
	return cat, nil
}

// FindActiveSecondaries returns results in the requested order even when
// served from a key built on the sorted set.
func (c *RedisCache) FindActiveSecondaries(ctx context.Context, ids []id.CategoryID, parent id.CategoryID) ([]models.Category, error) {
	key := secondariesKey(ids, parent)
	var cached []models.Category
	if c.get(ctx, key, &cached) {
		return orderLike(cached, ids), nil
	}
	cats, err := c.next.FindActiveSecondaries(ctx, ids, parent)
	if err != nil {
		return nil, err
	}
	if len(cats) == distinct(ids) {
		c.set(ctx, key, cats)
	}
	return cats, nil
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "taxonomy cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.WarnContext(ctx, "taxonomy cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *RedisCache) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.WarnContext(ctx, "taxonomy cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "taxonomy cache write failed", "key", key, "error", err)
	}
}

func distinct(ids []id.CategoryID) int {
	seen := make(map[id.CategoryID]struct{}, len(ids))
	for _, cid := range ids {
		seen[cid] = struct{}{}
	}
	return len(seen)
}

func orderLike(cats []models.Category, ids []id.CategoryID) []models.Category {
	byID := make(map[id.CategoryID]models.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	out := make([]models.Category, 0, len(cats))
	for _, cid := range ids {
		if c, ok := byID[cid]; ok {
			out = append(out, c)
		}
	}
	return out
}
