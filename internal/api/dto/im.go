package dto

import "time"

// SendMessageReq 发送消息请求体
type SendMessageReq struct {
	ConversationID uint64 `json:"conversation_id" binding:"required"`
	Content        string `json:"content" binding:"required" validate:"min=1,max=2000"`
}

// CreateGroupReq 创建群组/社区请求体
type CreateGroupReq struct {
	Name      string   `json:"name" binding:"required" validate:"min=1,max=100"`
	MemberIDs []uint64 `json:"member_ids"`
	Community bool     `json:"community"`
}

// ConversationDTO 会话列表项响应
type ConversationDTO struct {
	ConversationID uint64    `json:"conversation_id"`
	Type           int8      `json:"type"` // 1-私聊, 2-群组, 3-社区
	Name           string    `json:"name"`
	MaxMsgSeq      uint64    `json:"max_msg_seq"`
	ReadMsgSeq     uint64    `json:"read_msg_seq"`
	LastMessageAt  time.Time `json:"lastMessageAt"`
}
