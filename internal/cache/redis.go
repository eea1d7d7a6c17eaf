package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisCountCache(client *redis.Client, ttl time.Duration) *RedisCountCache {
	return &RedisCountCache{
		client: client,
		ttl:    ttl,
	}
}

type RedisCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisCountCache) Get(ctx context.Context, userID uint) (int64, error) {
	val, err := r.client.Get(ctx, countKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cached count failed: %w", err)
	}
	return count, nil
}

func (r *RedisCountCache) Set(ctx context.Context, userID uint, count int64) error {
	if err := r.client.Set(ctx, countKey(userID), count, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCountCache) Invalidate(ctx context.Context, userID uint) error {
	if err := r.client.Del(ctx, countKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func countKey(userID uint) string {
	return fmt.Sprintf("cart:count:%d", userID)
}
