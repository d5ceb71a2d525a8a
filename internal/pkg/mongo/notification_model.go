package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification 通知持久化模型
// 持久化即送达保证的全部：无重试队列，实时推送尽力而为
type Notification struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReceiverID uint64             `bson:"receiver_id" json:"receiverId"`
	Sender     UserSummary        `bson:"emisor" json:"sender"`
	Type       string             `bson:"type" json:"type"` // post.liked / post.commented / friend.request
	PostID     string             `bson:"post_id,omitempty" json:"postId,omitempty"`
	Message    string             `bson:"mensaje" json:"message"`
	IsRead     bool               `bson:"is_read" json:"isRead"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}
