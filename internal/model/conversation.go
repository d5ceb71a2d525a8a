package model

import (
	"time"
)

// Conversation 聊天容器：私聊 / 群组 / 社区
// 私聊的 peer_key 为排序后的用户对，唯一索引保证同一对用户只有一个私聊
type Conversation struct {
	ID            uint64    `gorm:"primaryKey"`
	Type          int8      `gorm:"not null;default:1"` // 1:私聊, 2:群组, 3:社区
	PeerKey       *string   `gorm:"type:varchar(64);uniqueIndex:idx_peer_key"`
	Name          string    `gorm:"type:varchar(100)"`
	MaxMsgSeq     uint64    `gorm:"not null;default:0"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Conversation) TableName() string {
	return "conversations"
}

// ConversationMember 会话成员
type ConversationMember struct {
	ID             uint64 `gorm:"primaryKey"`
	ConversationID uint64 `gorm:"not null;uniqueIndex:idx_conv_user"`
	UserID         uint64 `gorm:"not null;uniqueIndex:idx_conv_user;index:idx_user"`
	ReadMsgSeq     uint64 `gorm:"not null;default:0"`
	JoinedAt       time.Time

	Conversation Conversation `gorm:"foreignKey:ConversationID;references:ID"`
}

func (ConversationMember) TableName() string {
	return "conversation_members"
}
