package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid            = errors.New("参数错误")
	ErrUserNotFound            = errors.New("用户不存在")
	ErrUserEmailExist          = errors.New("邮箱已注册")
	ErrUserUsernameExist       = errors.New("用户名已存在")
	ErrPasswordIncorrect       = errors.New("密码错误")
	ErrMissingLoginCredentials = errors.New("缺少登录凭据")
	ErrPostNotFound            = errors.New("帖子不存在")
	ErrPostCommentNotFound     = errors.New("评论不存在")
	ErrActionDuplicate         = errors.New("重复操作")
	ErrRequestNotFound         = errors.New("好友申请不存在")
	ErrRequestSelf             = errors.New("不能向自己发送好友申请")
	ErrRequestExist            = errors.New("已有待处理的好友申请")
	ErrRequestNotPending       = errors.New("申请已被处理")
	ErrRequestAlreadyAccepted  = errors.New("申请已被接受")
	ErrNotificationNotFound    = errors.New("通知不存在")
	ErrConversation            = errors.New("会话异常")
	ErrConversationNotMember   = errors.New("不是会话成员")
	UnauthorizedError          = errors.New("权限不足")
	UnExpectedError            = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:            BadRequest,
	ErrUserNotFound:            NotFound,
	ErrUserEmailExist:          BadRequest,
	ErrUserUsernameExist:       BadRequest,
	ErrPasswordIncorrect:       Unauthorized,
	ErrMissingLoginCredentials: Unauthorized,
	ErrPostNotFound:            NotFound,
	ErrPostCommentNotFound:     NotFound,
	ErrActionDuplicate:         Conflict,
	ErrRequestNotFound:         NotFound,
	ErrRequestSelf:             BadRequest,
	ErrRequestExist:            Conflict,
	ErrRequestNotPending:       BadRequest,
	ErrRequestAlreadyAccepted:  Conflict,
	ErrNotificationNotFound:    NotFound,
	ErrConversation:            BadRequest,
	ErrConversationNotMember:   Unauthorized,
	UnauthorizedError:          Unauthorized,
	UnExpectedError:            InternalServerError,
}
