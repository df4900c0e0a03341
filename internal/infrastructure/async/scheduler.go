package async

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler calls job every interval until ctx is done. A job that overruns
// its interval delays the next tick instead of overlapping with it.
type Scheduler struct {
	interval time.Duration
	job      func(ctx context.Context) error
	log      *zap.Logger
}

func NewScheduler(interval time.Duration, job func(ctx context.Context) error, log *zap.Logger) *Scheduler {
	return &Scheduler{interval: interval, job: job, log: log}
}

// Run blocks; it returns immediately when the interval is not positive.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("scheduler disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			if err := s.job(ctx); err != nil {
				s.log.Warn("scheduled job failed", zap.Error(err))
			}
		}
	}
}
