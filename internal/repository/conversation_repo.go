package repository

import (
	"Lazo/internal/model"
	"Lazo/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type ConversationRepo interface {
	FindOrCreatePrivate(ctx context.Context, peerKey string, userA, userB uint64) (*model.Conversation, error)
	CreateGroup(ctx context.Context, conv *model.Conversation, memberIDs []uint64) error
	GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error)
	IsMember(ctx context.Context, convID uint64, userID uint64) (bool, error)
	IncrMaxSeq(ctx context.Context, convID uint64) (uint64, error)
	ListForUser(ctx context.Context, userID uint64) ([]*model.ConversationMember, error)
	MemberIDs(ctx context.Context, convID uint64) ([]uint64, error)
}

type conversationRepoImpl struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepoImpl{db: db}
}

// FindOrCreatePrivate 单次幂等的“查找或创建”私聊
// peer_key 唯一索引兜底并发：撞唯一键说明别人先建成了，回读即可
// 绝不出现同一对用户两个私聊，也没有先查后建再回写的窗口
func (s *conversationRepoImpl) FindOrCreatePrivate(ctx context.Context, peerKey string, userA, userB uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).Where("peer_key = ?", peerKey).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = model.Conversation{
		Type:          consts.ConversationPrivate,
		PeerKey:       &peerKey,
		LastMessageAt: time.Now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		members := []*model.ConversationMember{
			{ConversationID: conv.ID, UserID: userA, JoinedAt: time.Now()},
			{ConversationID: conv.ID, UserID: userB, JoinedAt: time.Now()},
		}
		return tx.Create(members).Error
	})
	if err != nil {
		if IsDuplicateKey(err) {
			var existing model.Conversation
			if err2 := s.db.WithContext(ctx).Where("peer_key = ?", peerKey).First(&existing).Error; err2 == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	return &conv, nil
}

// CreateGroup 开启事务创建群组/社区及初始成员
func (s *conversationRepoImpl) CreateGroup(ctx context.Context, conv *model.Conversation, memberIDs []uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for _, uid := range memberIDs {
			m := &model.ConversationMember{
				ConversationID: conv.ID,
				UserID:         uid,
				JoinedAt:       time.Now(),
			}
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *conversationRepoImpl) GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error) {
	var conv model.Conversation
	if err := s.db.WithContext(ctx).First(&conv, convID).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *conversationRepoImpl) IsMember(ctx context.Context, convID uint64, userID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Count(&count).Error
	return count > 0, err
}

// IncrMaxSeq 定序逻辑：利用 MySQL 行锁确保 Seq 绝对递增
func (s *conversationRepoImpl) IncrMaxSeq(ctx context.Context, convID uint64) (uint64, error) {
	var maxSeq uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Conversation{}).Where("id = ?", convID).
			Updates(map[string]interface{}{
				"max_msg_seq":     gorm.Expr("max_msg_seq + 1"),
				"last_message_at": time.Now(),
			}).Error
		if err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).Select("max_msg_seq").Where("id = ?", convID).Scan(&maxSeq).Error
	})
	return maxSeq, err
}

func (s *conversationRepoImpl) ListForUser(ctx context.Context, userID uint64) ([]*model.ConversationMember, error) {
	var members []*model.ConversationMember
	err := s.db.WithContext(ctx).
		Preload("Conversation").
		Where("user_id = ?", userID).
		Find(&members).Error
	return members, err
}

func (s *conversationRepoImpl) MemberIDs(ctx context.Context, convID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.ConversationMember{}).
		Where("conversation_id = ?", convID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// IsDuplicateKey 识别 MySQL 唯一键冲突
func IsDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
