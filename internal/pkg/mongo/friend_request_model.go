package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 好友请求状态机：Pendiente → Aceptada（终态），或 Pendiente → 删除（终态）
const (
	RequestPending  = "Pendiente"
	RequestAccepted = "Aceptada"
)

// FriendRequest 好友请求正本文档
type FriendRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Sender    UserSummary        `bson:"emisor" json:"sender"`
	Receiver  UserSummary        `bson:"receptor" json:"receiver"`
	State     string             `bson:"estado" json:"estado"`
	PairKey   string             `bson:"parClave" json:"pairKey"`
	ChatID    uint64             `bson:"chatPrivado" json:"chatPrivado"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// PairKey 无序用户对的规范化键：小 ID 在前
// 既用于冲突检测查询，也用于缓存键与会话 peer_key
func PairKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}
