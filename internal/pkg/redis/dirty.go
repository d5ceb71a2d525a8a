package redis

import (
	"context"
	"errors"
	log "log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DirtySet 记录待修复的帖子 ID，供定时任务兜底重算
type DirtySet struct {
	rdb *redis.Client
	key string
}

func NewDirtySet(rdb *redis.Client, key string) *DirtySet {
	return &DirtySet{rdb: rdb, key: key}
}

// Mark 标记脏数据，失败只记日志：脏集合是修复加速器，不是一致性边界
func (s *DirtySet) Mark(ctx context.Context, id string) {
	if err := s.rdb.SAdd(ctx, s.key, id).Err(); err != nil {
		log.ErrorContext(ctx, "mark dirty failed", "id", id, "err", err)
	}
}

// Drain 原子接管当前脏集合并返回其内容
// rename 到 processing 键，避免与并发写入者互相覆盖
func (s *DirtySet) Drain(ctx context.Context) []string {
	processingKey := s.key + ":processing"
	if err := s.rdb.Rename(ctx, s.key, processingKey).Err(); err != nil {
		// 脏集合为空时 RENAME 报 "ERR no such key"，属于正常的空闲周期
		if !isMissingSource(err) {
			log.ErrorContext(ctx, "rename dirty set failed", "err", err)
		}
		return nil
	}

	ids, err := s.rdb.SMembers(ctx, processingKey).Result()
	if err != nil {
		log.ErrorContext(ctx, "read dirty set failed", "err", err)
		return nil
	}

	if err := s.rdb.Del(ctx, processingKey).Err(); err != nil {
		log.ErrorContext(ctx, "delete processing set failed", "err", err)
	}
	return ids
}

// isMissingSource 判断 RENAME 是否因源键不存在而失败
func isMissingSource(err error) bool {
	return errors.Is(err, redis.Nil) || strings.Contains(err.Error(), "no such key")
}
