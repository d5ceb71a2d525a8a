package handler

import (
	"Lazo/internal/api/dto"
	"Lazo/internal/pkg/response"
	"Lazo/internal/service"

	"github.com/gin-gonic/gin"
)

type PostActionHandler struct {
	actionSvc service.PostActionService
}

func NewPostActionHandler(actionSvc service.PostActionService) *PostActionHandler {
	return &PostActionHandler{
		actionSvc: actionSvc,
	}
}

// LikePost 点赞帖子
func (s *PostActionHandler) LikePost(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID := c.Param("post_id")
	if postID == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.actionSvc.LikePost(c.Request.Context(), userID, postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UnlikePost 取消点赞
func (s *PostActionHandler) UnlikePost(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID := c.Param("post_id")
	if postID == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.actionSvc.UnlikePost(c.Request.Context(), userID, postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// AddComment 发表评论
func (s *PostActionHandler) AddComment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID := c.Param("post_id")
	if postID == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.CommentCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	comment, err := s.actionSvc.AddComment(c.Request.Context(), userID, postID, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

// UpdateComment 修改自己的评论
func (s *PostActionHandler) UpdateComment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID := c.Param("post_id")
	commentID := c.Param("comment_id")
	if postID == "" || commentID == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.CommentUpdateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.actionSvc.UpdateComment(c.Request.Context(), userID, postID, commentID, req.Text); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteComment 删除评论（评论作者或帖子作者）
func (s *PostActionHandler) DeleteComment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID := c.Param("post_id")
	commentID := c.Param("comment_id")
	if postID == "" || commentID == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.actionSvc.DeleteComment(c.Request.Context(), userID, postID, commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
