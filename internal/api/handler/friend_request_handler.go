package handler

import (
	"Lazo/internal/api/dto"
	"Lazo/internal/pkg/response"
	"Lazo/internal/service"

	"github.com/gin-gonic/gin"
)

type FriendRequestHandler struct {
	requestSvc service.FriendRequestService
}

func NewFriendRequestHandler(requestSvc service.FriendRequestService) *FriendRequestHandler {
	return &FriendRequestHandler{
		requestSvc: requestSvc,
	}
}

// Send 发起好友申请
func (s *FriendRequestHandler) Send(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var req dto.FriendRequestSendDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	request, err := s.requestSvc.Send(c.Request.Context(), userID, req.ReceiverID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, request)
}

// Accept 接受好友申请
func (s *FriendRequestHandler) Accept(c *gin.Context) {
	userID := c.GetUint64("user_id")
	requestID := c.Param("request_id")
	if requestID == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	request, err := s.requestSvc.Accept(c.Request.Context(), userID, requestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, request)
}

// Reject 拒绝或撤回好友申请
func (s *FriendRequestHandler) Reject(c *gin.Context) {
	userID := c.GetUint64("user_id")
	requestID := c.Param("request_id")
	if requestID == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.requestSvc.Reject(c.Request.Context(), userID, requestID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListSent 已发出的挂起申请
func (s *FriendRequestHandler) ListSent(c *gin.Context) {
	userID := c.GetUint64("user_id")

	list, err := s.requestSvc.ListSent(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// ListReceived 收到的挂起申请
func (s *FriendRequestHandler) ListReceived(c *gin.Context) {
	userID := c.GetUint64("user_id")

	list, err := s.requestSvc.ListReceived(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// ListFriends 好友列表
func (s *FriendRequestHandler) ListFriends(c *gin.Context) {
	userID := c.GetUint64("user_id")

	list, err := s.requestSvc.ListFriends(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
