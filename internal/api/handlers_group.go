package api

import "Lazo/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserHandler          *handler.UserHandler
	PostHandler          *handler.PostHandler
	PostActionHandler    *handler.PostActionHandler
	FriendRequestHandler *handler.FriendRequestHandler
	NotificationHandler  *handler.NotificationHandler
	IMHandler            *handler.IMHandler
	WsHandler            *handler.WsHandler
}
