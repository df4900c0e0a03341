package challenge

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"reviewarena/internal/domain/metrics"
)

type Type string

const (
	TypeReviewCount  Type = "review_count"
	TypeApprovalRate Type = "approval_rate"
	TypeResponseTime Type = "response_time"
)

func (t Type) Valid() bool {
	switch t {
	case TypeReviewCount, TypeApprovalRate, TypeResponseTime:
		return true
	}
	return false
}

type Phase string

const (
	PhaseUpcoming  Phase = "upcoming"
	PhaseActive    Phase = "active"
	PhaseCompleted Phase = "completed"
)

type Challenge struct {
	ID          string
	Name        string
	Description string
	TeamName    string
	Type        Type
	Goal        float64
	StartDate   time.Time
	EndDate     time.Time
	Reward      string
	IsActive    bool
	CreatedAt   time.Time
}

// Progress is the team's standing against the goal. Current is a review
// count, a percentage or hours depending on the challenge type.
type Progress struct {
	Current float64
	Goal    float64
	Percent float64
	Met     bool
}

type View struct {
	Challenge Challenge
	Phase     Phase
	Progress  Progress
}

type Board struct {
	Active    []View
	Upcoming  []View
	Completed []View
}

func PhaseOf(c Challenge, now time.Time) Phase {
	switch {
	case !c.IsActive || now.After(c.EndDate):
		return PhaseCompleted
	case now.Before(c.StartDate):
		return PhaseUpcoming
	default:
		return PhaseActive
	}
}

// ComputeProgress folds the team members' metrics for the challenge window
// into a single figure.
func ComputeProgress(c Challenge, rows []metrics.ReviewMetrics) Progress {
	p := Progress{Goal: c.Goal}

	switch c.Type {
	case TypeReviewCount:
		for _, r := range rows {
			p.Current += float64(r.TotalReviewed)
		}
		p.Met = p.Current >= c.Goal
		p.Percent = ratio(p.Current, c.Goal)

	case TypeApprovalRate:
		var approved, all int
		for _, r := range rows {
			approved += r.Approved
			all += r.Approved + r.ChangesRequested + r.Commented
		}
		if all > 0 {
			p.Current = round(100 * float64(approved) / float64(all))
		}
		p.Met = all > 0 && p.Current >= c.Goal
		p.Percent = ratio(p.Current, c.Goal)

	case TypeResponseTime:
		var medians []float64
		for _, r := range rows {
			if r.MedianResponseHours > 0 {
				medians = append(medians, r.MedianResponseHours)
			}
		}
		if len(medians) == 0 {
			return p
		}
		m, err := stats.Median(medians)
		if err != nil {
			return p
		}
		p.Current = round(m)
		p.Met = p.Current <= c.Goal
		// lower is better
		p.Percent = ratio(c.Goal, p.Current)
		if p.Current == 0 {
			p.Percent = 100
		}
	}
	return p
}

func ratio(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return math.Min(100, round(100*a/b))
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
