package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewClientFromRedis(rdb, ttl), mr
}

func TestClient_GetMissing(t *testing.T) {
	c, _ := setupTestRedis(t, time.Hour)

	v, ok, err := c.Get(context.Background(), "abc:jatoll-cart")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestClient_SetGet(t *testing.T) {
	c, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc:jatoll-cart", `[{"quantity":1}]`))

	raw, err := mr.Get("storefront:abc:jatoll-cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"quantity":1}]`, raw)
	assert.Equal(t, time.Hour, mr.TTL("storefront:abc:jatoll-cart"))

	v, ok, err := c.Get(ctx, "abc:jatoll-cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"quantity":1}]`, v)
}

func TestClient_TTLExpires(t *testing.T) {
	c, mr := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc:jatoll-wishlist", `[]`))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "abc:jatoll-wishlist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_NoTTL(t *testing.T) {
	c, mr := setupTestRedis(t, 0)

	require.NoError(t, c.Set(context.Background(), "k", "v"))
	assert.Equal(t, time.Duration(0), mr.TTL("storefront:k"))
}

func TestClient_Touch(t *testing.T) {
	c, mr := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))
	mr.FastForward(50 * time.Second)
	require.NoError(t, c.Touch(ctx, "k"))
	mr.FastForward(50 * time.Second)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClient_Delete(t *testing.T) {
	c, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1"))
	require.NoError(t, c.Set(ctx, "b", "2"))
	require.NoError(t, c.Delete(ctx, "a", "b"))

	assert.False(t, mr.Exists("storefront:a"))
	assert.False(t, mr.Exists("storefront:b"))
	assert.NoError(t, c.Delete(ctx))
}

func TestClient_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })
	c := NewClientFromRedis(rdb, time.Hour)
	mr.Close()

	_, _, err = c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), "k", "v"))
}
