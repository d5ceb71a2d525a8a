package mongo

import (
	"time"
)

// PostSummary 用户文档内嵌的帖子摘要
// 只读投影：计数是上次传播周期的快照，以帖子正本为准
type PostSummary struct {
	PostID       string    `bson:"post_id" json:"postId"`
	Description  string    `bson:"descripcion" json:"description"`
	Image        string    `bson:"imagen" json:"image"`
	LikeCount    int       `bson:"cantLikes" json:"cantLikes"`
	CommentCount int       `bson:"cantComentarios" json:"cantComentarios"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

// RequestSummary 用户文档内嵌的好友请求摘要
type RequestSummary struct {
	RequestID string      `bson:"request_id" json:"requestId"`
	Peer      UserSummary `bson:"par" json:"peer"`
	State     string      `bson:"estado" json:"estado"`
	ChatID    uint64      `bson:"chatPrivado" json:"chatPrivado"`
	CreatedAt time.Time   `bson:"created_at" json:"createdAt"`
}

// UserProfile 用户档案文档，_id 对齐关系库用户 ID
// 四个内嵌数组全部是正本的非规范化副本，由传播周期修复收敛
type UserProfile struct {
	UserID           uint64           `bson:"_id" json:"userId"`
	Name             string           `bson:"nombre" json:"name"`
	Email            string           `bson:"email" json:"email"`
	AvatarURL        string           `bson:"avatar_url" json:"avatarUrl"`
	Posts            []PostSummary    `bson:"publicaciones" json:"posts"`
	AnonymousPosts   []PostSummary    `bson:"publicacionesAnonimas" json:"anonymousPosts"`
	Likes            []PostSummary    `bson:"likes" json:"likes"`
	SentRequests     []RequestSummary `bson:"solicitudesEnviadas" json:"sentRequests"`
	ReceivedRequests []RequestSummary `bson:"solicitudesRecibidas" json:"receivedRequests"`
	CreatedAt        time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time        `bson:"updated_at" json:"updatedAt"`
}

// Summary 生成嵌入其它文档用的摘要
func (u *UserProfile) Summary() UserSummary {
	return UserSummary{
		UserID:    u.UserID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}
