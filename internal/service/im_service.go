package service

import (
	"Lazo/internal/api/dto"
	"Lazo/internal/model"
	"Lazo/internal/pkg/consts"
	mongorepo "Lazo/internal/pkg/mongo"
	"Lazo/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type IMService interface {
	SendMessage(ctx context.Context, userID uint64, req *dto.SendMessageReq) (*mongorepo.ChatMessage, error)
	GetHistory(ctx context.Context, userID uint64, convID uint64, lastSeq uint64, pageSize int) ([]*mongorepo.ChatMessage, error)
	ListConversations(ctx context.Context, userID uint64) ([]*dto.ConversationDTO, error)
	CreateGroup(ctx context.Context, ownerID uint64, req *dto.CreateGroupReq) (*model.Conversation, error)
	IsMember(ctx context.Context, convID uint64, userID uint64) (bool, error)
}

type imServiceImpl struct {
	convRepo    repository.ConversationRepo
	messageRepo mongorepo.MessageRepo
	profileRepo mongorepo.UserRepo
	broker      Publisher
}

func NewIMService(
	convRepo repository.ConversationRepo,
	messageRepo mongorepo.MessageRepo,
	profileRepo mongorepo.UserRepo,
	broker Publisher,
) IMService {
	return &imServiceImpl{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		broker:      broker,
	}
}

// SendMessage 发消息：关系库定序，文档库存明细，Pub/Sub 分发
// Seq 在会话行锁内递增，保证会话内消息绝对有序
func (s *imServiceImpl) SendMessage(ctx context.Context, userID uint64, req *dto.SendMessageReq) (*mongorepo.ChatMessage, error) {
	member, err := s.convRepo.IsMember(ctx, req.ConversationID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrConversationNotMember
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	seq, err := s.convRepo.IncrMaxSeq(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	msg := &mongorepo.ChatMessage{
		ConversationID: req.ConversationID,
		Sender:         profile.Summary(),
		Content:        req.Content,
		Seq:            seq,
		CreatedAt:      time.Now(),
	}
	if err := s.messageRepo.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	// 实时分发尽力而为，离线端靠历史拉取补齐
	payload, err := json.Marshal(msg)
	if err == nil {
		channel := consts.ChatConvChannel + strconv.FormatUint(req.ConversationID, 10)
		if err := s.broker.Publish(ctx, channel, payload); err != nil {
			log.WarnContext(ctx, "publish chat message failed", "channel", channel, "err", err)
		}
	}
	return msg, nil
}

func (s *imServiceImpl) GetHistory(ctx context.Context, userID uint64, convID uint64, lastSeq uint64, pageSize int) ([]*mongorepo.ChatMessage, error) {
	member, err := s.convRepo.IsMember(ctx, convID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrConversationNotMember
	}

	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.messageRepo.GetHistory(ctx, convID, lastSeq, pageSize)
}

func (s *imServiceImpl) ListConversations(ctx context.Context, userID uint64) ([]*dto.ConversationDTO, error) {
	members, err := s.convRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	list := make([]*dto.ConversationDTO, 0, len(members))
	for _, m := range members {
		list = append(list, &dto.ConversationDTO{
			ConversationID: m.ConversationID,
			Type:           m.Conversation.Type,
			Name:           m.Conversation.Name,
			MaxMsgSeq:      m.Conversation.MaxMsgSeq,
			ReadMsgSeq:     m.ReadMsgSeq,
			LastMessageAt:  m.Conversation.LastMessageAt,
		})
	}
	return list, nil
}

// CreateGroup 创建群组或社区，创建者自动入会
func (s *imServiceImpl) CreateGroup(ctx context.Context, ownerID uint64, req *dto.CreateGroupReq) (*model.Conversation, error) {
	convType := consts.ConversationGroup
	if req.Community {
		convType = consts.ConversationCommunity
	}

	memberIDs := []uint64{ownerID}
	for _, id := range req.MemberIDs {
		if id != ownerID {
			memberIDs = append(memberIDs, id)
		}
	}

	conv := &model.Conversation{
		Type:          convType,
		Name:          req.Name,
		LastMessageAt: time.Now(),
	}
	if err := s.convRepo.CreateGroup(ctx, conv, memberIDs); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *imServiceImpl) IsMember(ctx context.Context, convID uint64, userID uint64) (bool, error) {
	member, err := s.convRepo.IsMember(ctx, convID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return member, nil
}
