package events

import "time"

// Kind 领域事件类型，负载为封闭的带标签变体，在边界处校验后才进入核心
type Kind string

const (
	KindPostLiked       Kind = "post.liked"
	KindPostCommented   Kind = "post.commented"
	KindFriendRequested Kind = "friend.requested"
	KindFriendAccepted  Kind = "friend.accepted"
)

// Event 领域事件
type Event interface {
	Kind() Kind
}

// Actor 动作发起者摘要
type Actor struct {
	UserID    uint64 `json:"userId"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// PostSnapshot 事件携带的帖子快照
type PostSnapshot struct {
	PostID       string    `json:"postId"`
	OwnerID      uint64    `json:"ownerId"`
	Description  string    `json:"description"`
	LikeCount    int       `json:"cantLikes"`
	CommentCount int       `json:"cantComentarios"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PostLiked 帖子被点赞
type PostLiked struct {
	Post  PostSnapshot
	Actor Actor
}

func (PostLiked) Kind() Kind { return KindPostLiked }

// PostCommented 帖子被评论
type PostCommented struct {
	Post        PostSnapshot
	Actor       Actor
	CommentText string
}

func (PostCommented) Kind() Kind { return KindPostCommented }

// FriendRequested 收到好友申请
type FriendRequested struct {
	RequestID  string
	ReceiverID uint64
	Actor      Actor
}

func (FriendRequested) Kind() Kind { return KindFriendRequested }

// FriendAccepted 好友申请被接受
type FriendAccepted struct {
	RequestID string
	SenderID  uint64
	ChatID    uint64
	Actor     Actor
}

func (FriendAccepted) Kind() Kind { return KindFriendAccepted }
