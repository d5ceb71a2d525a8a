package handler

import (
	"Lazo/internal/api/dto"
	"Lazo/internal/pkg/response"
	"Lazo/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{
		userSvc: userSvc,
	}
}

// Register 注册新用户
func (s *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	token, err := s.userSvc.Register(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, token)
}

// Login 邮箱密码登录
func (s *UserHandler) Login(c *gin.Context) {
	var req dto.LoginDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	token, err := s.userSvc.Login(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, token)
}

// GetMe 当前登录用户的档案
func (s *UserHandler) GetMe(c *gin.Context) {
	userID := c.GetUint64("user_id")

	profile, err := s.userSvc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// GetProfile 按 ID 获取用户档案
func (s *UserHandler) GetProfile(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || userID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	profile, err := s.userSvc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// SearchByEmail 按邮箱精确查找用户
func (s *UserHandler) SearchByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	profile, err := s.userSvc.GetProfileByEmail(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}
