package logger

import (
	"context"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

// NewMongoMonitor 记录慢命令与失败命令
func NewMongoMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			if evt.Duration > 200*time.Millisecond {
				log.WarnContext(ctx, "MongoDB Slow",
					log.String("command", evt.CommandName),
					log.Duration("latency", evt.Duration),
				)
			}
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			log.ErrorContext(ctx, "MongoDB Error",
				log.String("command", evt.CommandName),
				log.Duration("latency", evt.Duration),
				log.Any("err", evt.Failure),
			)
		},
	}
}
