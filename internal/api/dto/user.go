package dto

import (
	"Lazo/internal/pkg/mongo"
	"time"
)

type RegisterDTO struct {
	Username string `json:"username" binding:"required" validate:"min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required" validate:"min=6,max=72"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserDTO 用户档案响应，内嵌数组是投影快照
type UserDTO struct {
	UserID           uint64                 `json:"userId"`
	Name             string                 `json:"name"`
	Email            string                 `json:"email"`
	AvatarURL        string                 `json:"avatarUrl"`
	Posts            []mongo.PostSummary    `json:"posts"`
	AnonymousPosts   []mongo.PostSummary    `json:"anonymousPosts"`
	Likes            []mongo.PostSummary    `json:"likes"`
	SentRequests     []mongo.RequestSummary `json:"sentRequests"`
	ReceivedRequests []mongo.RequestSummary `json:"receivedRequests"`
	CreatedAt        time.Time              `json:"createdAt"`
}

type TokenDTO struct {
	Token  string `json:"token"`
	UserID uint64 `json:"userId"`
}
