package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/commerce-service/internal/domain"
)

func newTestCache(t *testing.T) (*ProductCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewProductCache(client, time.Minute, nil), mr
}

func TestProductCache_ListRoundTripAndInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok := c.GetList(ctx, "home")
	assert.False(t, ok)

	c.SetList(ctx, c.Generation(ctx), "home", []domain.Product{{ID: 1, Name: "Lamp", Price: 100}})
	c.SetList(ctx, c.Generation(ctx), "", []domain.Product{{ID: 1}, {ID: 2}})

	home, ok := c.GetList(ctx, "home")
	require.True(t, ok)
	require.Len(t, home, 1)
	assert.Equal(t, "Lamp", home[0].Name)

	all, ok := c.GetList(ctx, "")
	require.True(t, ok)
	assert.Len(t, all, 2)

	require.NoError(t, c.InvalidateProduct(ctx, 1))
	assert.False(t, mr.Exists(listsKey))
	_, ok = c.GetList(ctx, "home")
	assert.False(t, ok)
}

func TestProductCache_ItemExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetProduct(ctx, c.Generation(ctx), &domain.Product{ID: 7, Name: "Rug"})
	got, ok := c.GetProduct(ctx, 7)
	require.True(t, ok)
	assert.Equal(t, "Rug", got.Name)

	mr.FastForward(2 * time.Minute)
	_, ok = c.GetProduct(ctx, 7)
	assert.False(t, ok)
}

func TestProductCache_UnreachableRedisIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, ok := c.GetProduct(context.Background(), 1)
	assert.False(t, ok)
	c.SetProduct(context.Background(), c.Generation(context.Background()), &domain.Product{ID: 1})
}

func TestProductCache_NilClient(t *testing.T) {
	c := NewProductCache(nil, time.Minute, nil)
	ctx := context.Background()

	c.SetList(ctx, 0, "", []domain.Product{{ID: 1}})
	_, ok := c.GetList(ctx, "")
	assert.False(t, ok)
	assert.NoError(t, c.InvalidateProduct(ctx, 1))
}

func TestProductCache_ZeroTTLKeepsListings(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := NewProductCache(client, 0, nil)
	ctx := context.Background()

	c.SetList(ctx, 0, "", []domain.Product{{ID: 1}})
	mr.FastForward(time.Hour)

	all, ok := c.GetList(ctx, "")
	require.True(t, ok)
	assert.Len(t, all, 1)
	assert.Equal(t, time.Duration(0), mr.TTL(listsKey))
}

func TestProductCache_WriteAfterInvalidationIsDropped(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	// a reader captures the generation, then a writer invalidates before the
	// reader's database result reaches the cache
	gen := c.Generation(ctx)
	require.NoError(t, c.InvalidateProduct(ctx, 1))

	c.SetList(ctx, gen, "", []domain.Product{{ID: 1, Name: "Old"}})
	c.SetProduct(ctx, gen, &domain.Product{ID: 1, Name: "Old"})

	_, ok := c.GetList(ctx, "")
	assert.False(t, ok)
	_, ok = c.GetProduct(ctx, 1)
	assert.False(t, ok)

	fresh := c.Generation(ctx)
	assert.Equal(t, gen+1, fresh)
	c.SetList(ctx, fresh, "", []domain.Product{{ID: 1, Name: "New"}})
	all, ok := c.GetList(ctx, "")
	require.True(t, ok)
	assert.Equal(t, "New", all[0].Name)
}
