package mongo

import (
	"time"
)

// ChatMessage 聊天消息明细，会话容器与定序在关系库
type ChatMessage struct {
	ID             string      `bson:"_id,omitempty" json:"id"`
	ConversationID uint64      `bson:"conversation_id" json:"conversationId"`
	Sender         UserSummary `bson:"emisor" json:"sender"`
	Content        string      `bson:"contenido" json:"content"`
	Seq            uint64      `bson:"seq" json:"seq"`
	CreatedAt      time.Time   `bson:"created_at" json:"createdAt"`
}
