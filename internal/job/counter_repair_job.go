package job

import (
	"Lazo/internal/pkg/logger"
	"Lazo/internal/pkg/redis"
	"Lazo/internal/service"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// CounterRepairJob 脏集合兜底修复任务
// 每个动作都会把帖子 ID 写进脏集合，本任务周期性接管集合
// 并对其中每个帖子重放重算-传播-回填序列，收敛漏掉的传播
type CounterRepairJob struct {
	dirty     *redis.DirtySet
	actionSvc service.PostActionService
}

func NewCounterRepairJob(dirty *redis.DirtySet, actionSvc service.PostActionService) *CounterRepairJob {
	return &CounterRepairJob{
		dirty:     dirty,
		actionSvc: actionSvc,
	}
}

func (s *CounterRepairJob) Run() {
	traceID := "job-repair-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	postIDs := s.dirty.Drain(ctx)
	if len(postIDs) == 0 {
		return
	}

	repaired := 0
	for _, postID := range postIDs {
		if err := s.actionSvc.RepairPost(ctx, postID); err != nil {
			log.ErrorContext(ctx, "repair post error", "post_id", postID, "err", err)
			// 修复失败重新标脏，下个周期再试
			s.dirty.Mark(ctx, postID)
			continue
		}
		repaired++
	}

	log.InfoContext(ctx, "counter repair finished", "total", len(postIDs), "repaired", repaired)
}
