package events

import (
	"context"
	log "log/slog"
	"sync"
)

// Emitter 事件发射端，变更提交后触发，相对 HTTP 响应是 fire-and-forget
type Emitter interface {
	Emit(ctx context.Context, evt Event)
}

// Handler 事件处理函数，失败不影响已提交的变更
type Handler func(ctx context.Context, evt Event)

// Bus 进程内事件总线
// 不提供跨进程投递保证，也不保证同一帖子多个事件之间的顺序
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

// On 注册处理函数
func (s *Bus) On(kind Kind, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[kind] = append(s.handlers[kind], h)
}

// Emit 异步分发事件
// 处理函数在独立 goroutine 中执行，panic 被吞掉只记日志
func (s *Bus) Emit(ctx context.Context, evt Event) {
	s.mu.RLock()
	hs := s.handlers[evt.Kind()]
	s.mu.RUnlock()

	for _, h := range hs {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("event handler panic", "kind", evt.Kind(), "panic", r)
				}
			}()
			h(context.WithoutCancel(ctx), evt)
		}(h)
	}
}
