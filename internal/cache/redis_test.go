package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCountCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCountCache(client, 10*time.Minute), mr
}

func TestGet_CacheMiss(t *testing.T) {
	c, _ := setupTestRedis(t)

	_, err := c.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSetGetInvalidate(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 42, 7))
	assert.Equal(t, 10*time.Minute, mr.TTL(countKey(42)))

	count, err := c.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	require.NoError(t, c.Invalidate(ctx, 42))
	_, err = c.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestGet_CorruptValue(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Set(countKey(3), "not-a-number")

	_, err := c.Get(context.Background(), 3)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
