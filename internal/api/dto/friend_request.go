package dto

type FriendRequestSendDTO struct {
	ReceiverID uint64 `json:"receiverId" binding:"required"`
}
