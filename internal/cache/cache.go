// Package cache provides an optional Redis read-through layer for the
// category tree and the dashboard summary. A nil client disables caching
// without changing call sites.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emreakay/inventory-api/internal/domain"
	"github.com/emreakay/inventory-api/internal/repository"
)

const (
	treeKey      = "categories:tree"
	dashboardKey = "dashboard:summary"
)

// ErrMiss is returned when the requested key is not cached.
var ErrMiss = errors.New("cache miss")

// Cache wraps a Redis client with typed accessors. All methods are safe to
// call with a nil receiver or nil client; they report ErrMiss on reads and
// do nothing on writes.
type Cache struct {
	client  *redis.Client
	treeTTL time.Duration
	dashTTL time.Duration
}

// New creates a cache with the given TTLs. Pass a nil client to disable
// caching.
func New(client *redis.Client, treeTTL, dashboardTTL time.Duration) *Cache {
	return &Cache{client: client, treeTTL: treeTTL, dashTTL: dashboardTTL}
}

func (c *Cache) disabled() bool {
	return c == nil || c.client == nil
}

// GetTree returns the cached category tree, or ErrMiss.
func (c *Cache) GetTree(ctx context.Context) ([]*domain.Category, error) {
	if c.disabled() {
		return nil, ErrMiss
	}

	data, err := c.client.Get(ctx, treeKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("redis get tree: %w", err)
	}

	var tree []*domain.Category
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("unmarshal tree: %w", err)
	}
	return tree, nil
}

// SetTree stores the assembled category tree.
func (c *Cache) SetTree(ctx context.Context, tree []*domain.Category) error {
	if c.disabled() {
		return nil
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("marshal tree: %w", err)
	}
	if err := c.client.Set(ctx, treeKey, data, c.treeTTL).Err(); err != nil {
		return fmt.Errorf("redis set tree: %w", err)
	}
	return nil
}

// InvalidateTree drops the cached tree. Called after any structural change
// to the category table.
func (c *Cache) InvalidateTree(ctx context.Context) error {
	if c.disabled() {
		return nil
	}
	if err := c.client.Del(ctx, treeKey).Err(); err != nil {
		return fmt.Errorf("redis del tree: %w", err)
	}
	return nil
}

// GetDashboard returns the cached dashboard summary, or ErrMiss.
func (c *Cache) GetDashboard(ctx context.Context) (*repository.DashboardSummary, error) {
	if c.disabled() {
		return nil, ErrMiss
	}

	data, err := c.client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("redis get dashboard: %w", err)
	}

	var summary repository.DashboardSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal dashboard: %w", err)
	}
	return &summary, nil
}

// SetDashboard stores the dashboard summary. The summary is served slightly
// stale for at most the configured TTL; it is never invalidated on writes.
func (c *Cache) SetDashboard(ctx context.Context, summary *repository.DashboardSummary) error {
	if c.disabled() {
		return nil
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal dashboard: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKey, data, c.dashTTL).Err(); err != nil {
		return fmt.Errorf("redis set dashboard: %w", err)
	}
	return nil
}
