package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSummary 嵌入在文档中的用户摘要
type UserSummary struct {
	UserID    uint64 `bson:"user_id" json:"userId"`
	Name      string `bson:"nombre" json:"name"`
	AvatarURL string `bson:"avatar_url" json:"avatarUrl"`
}

// Comment 帖子内嵌评论，只允许通过帖子的评论操作增删改
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Author    UserSummary        `bson:"autor" json:"author"`
	Text      string             `bson:"texto" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Post 帖子正本文档
// 计数恒等于权威数组长度，变更后从保存结果重算，禁止盲目自增
type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Description  string             `bson:"descripcion" json:"description"`
	Images       []string           `bson:"imagenes" json:"images"`
	Anonymous    bool               `bson:"anonimo" json:"anonymous"`
	OwnerID      uint64             `bson:"owner_id" json:"ownerId"`
	Owner        UserSummary        `bson:"owner" json:"owner"`
	Comments     []Comment          `bson:"comentarios" json:"comments"`
	CommentCount int                `bson:"cantComentarios" json:"cantComentarios"`
	Likers       []uint64           `bson:"likers" json:"likers"`
	LikeCount    int                `bson:"cantLikes" json:"cantLikes"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}
