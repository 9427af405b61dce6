package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emreakay/inventory-api/internal/domain"
	"github.com/emreakay/inventory-api/internal/repository"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, 5*time.Minute, time.Minute), mr
}

func TestCache_TreeRoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	_, err := c.GetTree(ctx)
	assert.ErrorIs(t, err, ErrMiss)

	tree := []*domain.Category{
		{ID: "cat-1", Name: "Electronics", Children: []*domain.Category{
			{ID: "cat-2", Name: "Phones", Path: "cat-1", Level: 1},
		}},
	}
	require.NoError(t, c.SetTree(ctx, tree))

	got, err := c.GetTree(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Children, 1)
	assert.Equal(t, "cat-2", got[0].Children[0].ID)
}

func TestCache_InvalidateTree(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetTree(ctx, []*domain.Category{{ID: "cat-1"}}))
	require.NoError(t, c.InvalidateTree(ctx))

	_, err := c.GetTree(ctx)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCache_TreeExpires(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetTree(ctx, []*domain.Category{{ID: "cat-1"}}))
	mr.FastForward(6 * time.Minute)

	_, err := c.GetTree(ctx)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCache_DashboardRoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	_, err := c.GetDashboard(ctx)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.SetDashboard(ctx, &repository.DashboardSummary{TotalProducts: 42}))

	got, err := c.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, got.TotalProducts)
}

func TestCache_NilClientIsNoop(t *testing.T) {
	c := New(nil, time.Minute, time.Minute)
	ctx := context.Background()

	_, err := c.GetTree(ctx)
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, c.SetTree(ctx, nil))
	assert.NoError(t, c.InvalidateTree(ctx))

	var nilCache *Cache
	_, err = nilCache.GetDashboard(ctx)
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, nilCache.SetDashboard(ctx, nil))
}
