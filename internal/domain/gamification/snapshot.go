package gamification

import (
	"time"

	"reviewarena/internal/domain/pr"
)

const (
	fastReviewWindow = 30 * time.Minute
	nightStartsAt    = 22
)

// Snapshot is the all-time review history of one user reduced to the values
// achievements and XP are computed from.
type Snapshot struct {
	TotalReviewed        int
	Approved             int
	ChangesRequested     int
	Commented            int
	CurrentStreak        int
	LongestStreak        int
	RepositoriesReviewed int
	FastReviews          int
	NightReviews         int
	WeekendPairs         int
	LastReviewAt         *time.Time
}

func (s Snapshot) Value(metric string) int {
	switch metric {
	case MetricTotalReviewed:
		return s.TotalReviewed
	case MetricApproved:
		return s.Approved
	case MetricChangesRequested:
		return s.ChangesRequested
	case MetricCommented:
		return s.Commented
	case MetricLongestStreak:
		return s.LongestStreak
	case MetricRepositoriesReviewed:
		return s.RepositoriesReviewed
	case MetricFastReviews:
		return s.FastReviews
	case MetricNightReviews:
		return s.NightReviews
	case MetricWeekendPairs:
		return s.WeekendPairs
	}
	return 0
}

// BuildSnapshot reduces reviews of userID. prs is used to look up creation
// times for the fast-review count; missing entries are skipped. Day-based
// values (streaks, night and weekend reviews) are computed in loc.
func BuildSnapshot(userID int64, reviews []pr.Review, prs map[int64]pr.PullRequest, loc *time.Location, now time.Time) Snapshot {
	if loc == nil {
		loc = time.UTC
	}

	var s Snapshot
	reviewed := make(map[int64]bool)
	repos := make(map[string]bool)
	first := make(map[int64]time.Time)
	days := make([]time.Time, 0, len(reviews))
	dayset := make(map[time.Time]bool)

	for _, r := range reviews {
		if r.UserID != userID || !r.State.Submitted() {
			continue
		}

		reviewed[r.PullRequestID] = true
		switch r.State {
		case pr.ReviewApproved:
			s.Approved++
		case pr.ReviewChangesRequested:
			s.ChangesRequested++
		case pr.ReviewCommented:
			s.Commented++
		}
		if r.RepositoryName != "" {
			repos[r.RepositoryName] = true
		}

		local := r.SubmittedAt.In(loc)
		if local.Hour() >= nightStartsAt {
			s.NightReviews++
		}
		day := dateOf(local)
		days = append(days, day)
		dayset[day] = true

		if f, ok := first[r.PullRequestID]; !ok || r.SubmittedAt.Before(f) {
			first[r.PullRequestID] = r.SubmittedAt
		}
		if s.LastReviewAt == nil || r.SubmittedAt.After(*s.LastReviewAt) {
			at := r.SubmittedAt
			s.LastReviewAt = &at
		}
	}

	s.TotalReviewed = len(reviewed)
	s.RepositoriesReviewed = len(repos)

	for prID, at := range first {
		p, ok := prs[prID]
		if !ok || p.AuthorID == userID {
			continue
		}
		if d := at.Sub(p.CreatedAt); d >= 0 && d <= fastReviewWindow {
			s.FastReviews++
		}
	}

	for day := range dayset {
		if day.Weekday() == time.Saturday && dayset[day.AddDate(0, 0, 1)] {
			s.WeekendPairs++
		}
	}

	s.CurrentStreak, s.LongestStreak = ComputeStreak(days, now.In(loc))
	return s
}
