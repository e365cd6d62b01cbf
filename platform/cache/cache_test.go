package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "test"), mr
}

func TestSetGetRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "funnel:2026_01", payload{Month: "2026_01", Count: 3}, time.Minute))
	assert.True(t, mr.Exists("test:funnel:2026_01"))

	var got payload
	require.NoError(t, c.Get(ctx, "funnel:2026_01", &got))
	assert.Equal(t, payload{Month: "2026_01", Count: 3}, got)

	mr.FastForward(2 * time.Minute)
	err := c.Get(ctx, "funnel:2026_01", &got)
	assert.True(t, errors.Is(err, ErrMiss), "expected miss after expiry, got %v", err)
}

func TestDeletePrefix(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{"funnel:2026_01:all", "funnel:2026_01:佐藤", "funnel:2026_02:all"} {
		require.NoError(t, c.Set(ctx, key, payload{}, 0))
	}

	deleted, err := c.DeletePrefix(ctx, "funnel:2026_01")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.False(t, mr.Exists("test:funnel:2026_01:all"))
	assert.True(t, mr.Exists("test:funnel:2026_02:all"))
}

func TestCorruptValueIsAnError(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("test:broken", "{not json"))

	var got payload
	err := c.Get(context.Background(), "broken", &got)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMiss))
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	assert.NoError(t, c.Set(ctx, "k", 1, 0))
	assert.ErrorIs(t, c.Get(ctx, "k", new(int)), ErrMiss)
	n, err := c.DeletePrefix(ctx, "k")
	assert.NoError(t, err)
	assert.Zero(t, n)
}
