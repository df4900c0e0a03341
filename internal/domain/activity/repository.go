package activity

import (
	"context"
	"time"
)

type Repository interface {
	Record(ctx context.Context, entries []Entry) (int64, error)
	CountForRepositorySince(ctx context.Context, org, repo string, since time.Time) (int, error)
	DailyCounts(ctx context.Context, org string, typ Type, from, to time.Time) ([]DailyCount, error)
}
