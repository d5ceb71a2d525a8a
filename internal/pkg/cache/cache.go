package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss 表示键不存在
var ErrMiss = errors.New("cache: key not found")

// Store 键值缓存的最小接口，便于在测试中替换实现
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
