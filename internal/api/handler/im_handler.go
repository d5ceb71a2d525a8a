package handler

import (
	"Lazo/internal/api/dto"
	"Lazo/internal/pkg/response"
	"Lazo/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type IMHandler struct {
	imSvc service.IMService
}

func NewIMHandler(imSvc service.IMService) *IMHandler {
	return &IMHandler{
		imSvc: imSvc,
	}
}

// SendMessage 发送消息
func (s *IMHandler) SendMessage(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	msg, err := s.imSvc.SendMessage(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

// GetHistory 游标式历史消息拉取
func (s *IMHandler) GetHistory(c *gin.Context) {
	userID := c.GetUint64("user_id")
	convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
	if err != nil || convID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	lastSeq, _ := strconv.ParseUint(c.DefaultQuery("last_seq", "0"), 10, 64)
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	messages, err := s.imSvc.GetHistory(c.Request.Context(), userID, convID, lastSeq, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, messages)
}

// ListConversations 会话列表
func (s *IMHandler) ListConversations(c *gin.Context) {
	userID := c.GetUint64("user_id")

	list, err := s.imSvc.ListConversations(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// CreateGroup 创建群组/社区
func (s *IMHandler) CreateGroup(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var req dto.CreateGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	conv, err := s.imSvc.CreateGroup(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, conv)
}
