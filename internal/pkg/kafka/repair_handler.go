package kafka

import (
	"Lazo/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// RepairMessage 修复请求消息体：外部系统发现可疑帖子后投递其 ID
type RepairMessage struct {
	PostID string `json:"post_id"`
}

// RepairHandler 消费修复主题，对每个帖子执行一轮完整的重算-传播-回填
// 修复幂等，重复投递与乱序投递都无害
type RepairHandler struct {
	actionSvc service.PostActionService
}

func NewRepairHandler(actionSvc service.PostActionService) *RepairHandler {
	return &RepairHandler{actionSvc: actionSvc}
}

func (s *RepairHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("repair consumer setup")
	return nil
}

func (s *RepairHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("repair consumer cleanup")
	return nil
}

func (s *RepairHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	return pullMessageBatch(session, claim, s.repair)
}

func (s *RepairHandler) repair(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var repairMsg RepairMessage
	if err := json.Unmarshal(msg.Value, &repairMsg); err != nil {
		// 消息体损坏没有重试价值，记日志后吞掉
		log.ErrorContext(ctx, "unmarshal repair message error", "err", err)
		return nil
	}
	if repairMsg.PostID == "" {
		return nil
	}

	if err := s.actionSvc.RepairPost(ctx, repairMsg.PostID); err != nil {
		return errors.Wrapf(err, "repair post %s", repairMsg.PostID)
	}
	return nil
}
