package api

import (
	"Lazo/internal/api/middleware"
	"Lazo/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			// 无需登录即可访问的接口
			userGroup.POST("/login", group.UserHandler.Login)
			userGroup.POST("/register", group.UserHandler.Register)
			userGroup.GET("/:user_id/profile", group.UserHandler.GetProfile)
			userGroup.GET("/search", group.UserHandler.SearchByEmail)

			authGroup := userGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.GET("/info", group.UserHandler.GetMe)
			}
		}

		postGroup := apiGroup.Group("/post")
		{
			postGroup.GET("", group.PostHandler.GetFeed)
			postGroup.GET("/:post_id", group.PostHandler.GetPost)
			postGroup.GET("/user/:user_id", group.PostHandler.GetPostsByOwner)

			authGroup := postGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.PostHandler.CreatePost)
				authGroup.PUT("/:post_id", group.PostHandler.UpdatePost)
				authGroup.DELETE("/:post_id", group.PostHandler.DeletePost)

				authGroup.POST("/:post_id/like", group.PostActionHandler.LikePost)
				authGroup.DELETE("/:post_id/like", group.PostActionHandler.UnlikePost)
				authGroup.POST("/:post_id/comment", group.PostActionHandler.AddComment)
				authGroup.PUT("/:post_id/comment/:comment_id", group.PostActionHandler.UpdateComment)
				authGroup.DELETE("/:post_id/comment/:comment_id", group.PostActionHandler.DeleteComment)
			}
		}

		friendGroup := apiGroup.Group("/friend-request")
		friendGroup.Use(middleware.AuthMiddleware())
		{
			friendGroup.POST("", group.FriendRequestHandler.Send)
			friendGroup.POST("/:request_id/accept", group.FriendRequestHandler.Accept)
			friendGroup.DELETE("/:request_id", group.FriendRequestHandler.Reject)
			friendGroup.GET("/sent", group.FriendRequestHandler.ListSent)
			friendGroup.GET("/received", group.FriendRequestHandler.ListReceived)
			friendGroup.GET("/friends", group.FriendRequestHandler.ListFriends)
		}

		notifyGroup := apiGroup.Group("/notification")
		notifyGroup.Use(middleware.AuthMiddleware())
		{
			notifyGroup.GET("", group.NotificationHandler.List)
			notifyGroup.GET("/unread/count", group.NotificationHandler.UnreadCount)
			notifyGroup.PUT("/:notification_id/read", group.NotificationHandler.MarkRead)
			notifyGroup.PUT("/read/all", group.NotificationHandler.MarkAllRead)
		}

		imGroup := apiGroup.Group("/im")
		{
			imGroup.GET("/ws", group.WsHandler.Connect)

			authGroup := imGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/message", group.IMHandler.SendMessage)
				authGroup.GET("/conversation", group.IMHandler.ListConversations)
				authGroup.GET("/conversation/:conversation_id/history", group.IMHandler.GetHistory)
				authGroup.POST("/group", group.IMHandler.CreateGroup)
			}
		}
	}

	return r
}
