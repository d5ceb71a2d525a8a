package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Broker 封装 Pub/Sub 总线，用于通知推送与聊天消息分发
type Broker struct {
	rdb *redis.Client
}

func NewBroker(rdb *redis.Client) *Broker {
	return &Broker{rdb: rdb}
}

// Publish 向指定频道发布消息
func (s *Broker) Publish(ctx context.Context, channel string, payload []byte) error {
	return s.rdb.Publish(ctx, channel, payload).Err()
}

// Subscribe 订阅一组频道，调用方负责 Close
func (s *Broker) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, channels...)
}
