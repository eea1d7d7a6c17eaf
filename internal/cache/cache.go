package cache

import (
	"context"
	"errors"
)

// CountCache memoizes per-user cart counts. Writers must Invalidate after
// every committed cart mutation so reads never see a stale count.
type CountCache interface {
	Get(ctx context.Context, userID uint) (int64, error)
	Set(ctx context.Context, userID uint, count int64) error
	Invalidate(ctx context.Context, userID uint) error
}

var ErrCacheMiss = errors.New("cache miss")
