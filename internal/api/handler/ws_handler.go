package handler

import (
	"Lazo/internal/pkg/consts"
	"Lazo/internal/pkg/redis"
	"Lazo/internal/pkg/response"
	"Lazo/internal/pkg/security"
	"Lazo/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	imSvc  service.IMService
	broker *redis.Broker
}

func NewWsHandler(imSvc service.IMService, broker *redis.Broker) *WsHandler {
	return &WsHandler{
		imSvc:  imSvc,
		broker: broker,
	}
}

// Connect 建立 WebSocket 连接
// 订阅本人通知频道与所有参与会话的消息频道，Pub/Sub 消息原样透传
func (s *WsHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}
	claims, err := security.ValidateToken(token)
	if err != nil {
		log.Warn("WS 鉴权失败", "err", err)
		response.Error(c, service.UnauthorizedError)
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	list, err := s.imSvc.ListConversations(context.Background(), userID)
	if err != nil {
		log.Error("获取会话列表失败", "userID", userID, "err", err)
		return
	}

	channels := []string{consts.NotifyUserChannel + strconv.FormatUint(userID, 10)}
	for _, conv := range list {
		channels = append(channels, consts.ChatConvChannel+strconv.FormatUint(conv.ConversationID, 10))
	}

	pubsub := s.broker.Subscribe(context.Background(), channels...)
	defer func() {
		_ = pubsub.Close()
	}()

	log.Info("用户 WS 连接已建立", "userID", userID, "channels", len(channels))

	stopChan := make(chan struct{})

	// 读循环：监听客户端主动断开
	go func() {
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				close(stopChan)
				return
			}
		}
	}()

	// 写循环：监听 Redis 并推送至客户端
	redisCh := pubsub.Channel()
	for {
		select {
		case msg := <-redisCh:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload))
			if err != nil {
				log.Error("WS 推送失败", "userID", userID, "err", err)
				return
			}
		case <-stopChan:
			log.Info("用户 WS 连接已断开", "userID", userID)
			return
		}
	}
}
