package async

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is an alias so a plain func literal satisfies domain.TaskRunner.
type Task = func(ctx context.Context)

type WorkerPool struct {
	name    string
	tasks   chan Task
	timeout time.Duration
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
	once    sync.Once
}

// NewWorkerPool starts size workers. Every task runs under its own context
// bounded by timeout and cancelled on Shutdown.
func NewWorkerPool(parent context.Context, name string, size int, timeout time.Duration, log *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(parent)
	p := &WorkerPool{
		name:    name,
		tasks:   make(chan Task, size),
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With(zap.String("pool", name)),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.run(id, task)
		}
	}
}

func (p *WorkerPool) run(id int, task Task) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("task panicked", zap.Int("worker", id), zap.Any("panic", r))
		}
	}()
	task(ctx)
}

// Submit blocks until a worker accepts the task or the pool is shut down.
// It returns false if the task was dropped.
func (p *WorkerPool) Submit(task Task) bool {
	if p.ctx.Err() != nil {
		p.log.Warn("task dropped, pool is shut down")
		return false
	}
	select {
	case <-p.ctx.Done():
		p.log.Warn("task dropped, pool is shut down")
		return false
	case p.tasks <- task:
		return true
	}
}

func (p *WorkerPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}
