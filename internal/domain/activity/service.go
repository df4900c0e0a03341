package activity

import (
	"context"
	"time"

	"reviewarena/internal/domain"
)

type Service interface {
	Record(ctx context.Context, entries ...Entry) error
	// IsHighActivity reports whether repo logged more than the configured
	// number of entries during the last 24 hours.
	IsHighActivity(ctx context.Context, org, repo string) (bool, error)
	// DailyReviews returns one point per calendar day in [from, to], days
	// without reviews included.
	DailyReviews(ctx context.Context, org string, from, to time.Time) ([]DailyCount, error)
}

type service struct {
	repo      Repository
	clock     domain.Clock
	threshold int
	loc       *time.Location
}

func NewService(repo Repository, clock domain.Clock, highActivityThreshold int, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:      repo,
		clock:     clock,
		threshold: highActivityThreshold,
		loc:       loc,
	}
}

func (s *service) Record(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := s.repo.Record(ctx, entries)
	return err
}

func (s *service) IsHighActivity(ctx context.Context, org, repo string) (bool, error) {
	n, err := s.repo.CountForRepositorySince(ctx, org, repo, s.clock.Now().Add(-24*time.Hour))
	if err != nil {
		return false, err
	}
	return n > s.threshold, nil
}

func (s *service) DailyReviews(ctx context.Context, org string, from, to time.Time) ([]DailyCount, error) {
	counts, err := s.repo.DailyCounts(ctx, org, TypeReviewedPR, from, to)
	if err != nil {
		return nil, err
	}
	return FillDays(counts, from, to, s.loc), nil
}

// FillDays expands sparse per-day counts into a contiguous series in loc.
func FillDays(counts []DailyCount, from, to time.Time, loc *time.Location) []DailyCount {
	if to.Before(from) {
		return nil
	}

	byDay := make(map[string]int, len(counts))
	for _, c := range counts {
		byDay[c.Day.In(loc).Format(time.DateOnly)] += c.Count
	}

	start := truncateDay(from.In(loc))
	end := truncateDay(to.In(loc))

	var out []DailyCount
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, DailyCount{Day: d, Count: byDay[d.Format(time.DateOnly)]})
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
