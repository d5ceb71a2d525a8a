package cache

import (
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
)

// Gateway 缓存网关：所有读写均为尽力而为，失败只记日志不上抛
// 缓存是优化手段，不是一致性边界，业务成功与否不依赖缓存健康
type Gateway struct {
	store Store
}

func NewGateway(store Store) *Gateway {
	return &Gateway{store: store}
}

// GetJSON 读取并反序列化快照，命中返回 true
// 存储层错误与脏数据一律按未命中处理
func (s *Gateway) GetJSON(ctx context.Context, key string, dest any) bool {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.WarnContext(ctx, "cache get failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.WarnContext(ctx, "cache value corrupted, treat as miss", "key", key, "err", err)
		return false
	}
	return true
}

// SetJSON 序列化后带 TTL 写入
func (s *Gateway) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.WarnContext(ctx, "cache marshal failed", "key", key, "err", err)
		return
	}
	if err := s.store.Set(ctx, key, string(data), ttl); err != nil {
		log.WarnContext(ctx, "cache set failed", "key", key, "err", err)
	}
}

// Del 批量删除失效键
func (s *Gateway) Del(ctx context.Context, keys ...string) {
	if err := s.store.Del(ctx, keys...); err != nil {
		log.WarnContext(ctx, "cache del failed", "keys", keys, "err", err)
	}
}

// GetOrCompute 旁路缓存读取：命中直接反序列化到 dest，
// 未命中执行 compute（由其填充 dest）后回填缓存
// 并发未命中会重复计算并各自回写，结果幂等，可接受
func (s *Gateway) GetOrCompute(ctx context.Context, key string, ttl time.Duration, dest any, compute func() error) error {
	if s.GetJSON(ctx, key, dest) {
		return nil
	}
	if err := compute(); err != nil {
		return err
	}
	s.SetJSON(ctx, key, dest, ttl)
	return nil
}
