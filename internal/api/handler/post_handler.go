package handler

import (
	"Lazo/internal/api/dto"
	"Lazo/internal/pkg/response"
	"Lazo/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{
		postSvc: postSvc,
	}
}

// CreatePost 发布帖子
func (s *PostHandler) CreatePost(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var req dto.CreatePostDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.postSvc.CreatePost(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// GetFeed 全量帖子流
func (s *PostHandler) GetFeed(c *gin.Context) {
	posts, err := s.postSvc.GetFeed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

// GetPost 帖子详情
func (s *PostHandler) GetPost(c *gin.Context) {
	postID := c.Param("post_id")
	if postID == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	post, err := s.postSvc.GetPost(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// GetPostsByOwner 某用户的帖子列表
func (s *PostHandler) GetPostsByOwner(c *gin.Context) {
	ownerID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || ownerID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	anonymous := c.Query("anonimo") == "true"

	posts, err := s.postSvc.GetPostsByOwner(c.Request.Context(), ownerID, anonymous)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

// UpdatePost 修改帖子描述
func (s *PostHandler) UpdatePost(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID := c.Param("post_id")
	if postID == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.UpdatePostDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.postSvc.UpdateDescription(c.Request.Context(), userID, postID, req.Description); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// DeletePost 删除帖子
func (s *PostHandler) DeletePost(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID := c.Param("post_id")
	if postID == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.postSvc.DeletePost(c.Request.Context(), userID, postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
