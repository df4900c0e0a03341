package domain

import (
	"context"
	"time"
)

// Clock returns the current time. Services take it instead of calling time.Now.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TaskRunner schedules fire-and-forget work such as background syncs.
// Submit reports false when the task was dropped and will never run.
type TaskRunner interface {
	Submit(task func(ctx context.Context)) bool
}
