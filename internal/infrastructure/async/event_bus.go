package async

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"reviewarena/internal/domain"
)

type Handler func(ctx context.Context, e domain.Event) error

// AsyncEventBus logs every event and fans it out to subscribers on its own
// worker pool, off the publisher's goroutine.
type AsyncEventBus struct {
	pool *WorkerPool
	log  *zap.Logger

	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewAsyncEventBus(pool *WorkerPool, log *zap.Logger) *AsyncEventBus {
	return &AsyncEventBus{
		pool:     pool,
		log:      log,
		handlers: make(map[string][]Handler),
	}
}

func (b *AsyncEventBus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

func (b *AsyncEventBus) Publish(ctx context.Context, e domain.Event) {
	b.mu.RLock()
	handlers := b.handlers[e.Type]
	b.mu.RUnlock()

	accepted := b.pool.Submit(func(taskCtx context.Context) {
		b.log.Info("domain_event",
			zap.String("type", e.Type),
			zap.Any("payload", e.Payload),
		)
		for _, h := range handlers {
			if err := h(taskCtx, e); err != nil {
				b.log.Error("event handler failed", zap.String("type", e.Type), zap.Error(err))
			}
		}
	})
	if !accepted {
		b.log.Warn("domain event dropped", zap.String("type", e.Type))
	}
}

func (b *AsyncEventBus) Close() {
	b.pool.Shutdown()
}
