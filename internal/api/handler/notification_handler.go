package handler

import (
	"Lazo/internal/pkg/response"
	"Lazo/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifySvc service.NotificationService
}

func NewNotificationHandler(notifySvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notifySvc: notifySvc,
	}
}

// List 分页获取通知
func (s *NotificationHandler) List(c *gin.Context) {
	userID := c.GetUint64("user_id")
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "20"), 10, 64)

	list, err := s.notifySvc.List(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// UnreadCount 未读数
func (s *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := c.GetUint64("user_id")

	count, err := s.notifySvc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

// MarkRead 标记单条已读
func (s *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetUint64("user_id")
	id := c.Param("notification_id")
	if id == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.notifySvc.MarkRead(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllRead 全部标记已读
func (s *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetUint64("user_id")

	if err := s.notifySvc.MarkAllRead(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
