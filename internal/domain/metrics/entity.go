package metrics

import (
	"time"

	"reviewarena/internal/domain/pr"
)

// ReviewMetrics is one leaderboard row.
type ReviewMetrics struct {
	UserID    int64
	Login     string
	Name      string
	AvatarURL string

	Assigned         int
	Approved         int
	ChangesRequested int
	Commented        int
	TotalReviewed    int
	Opened           int
	OpenAgainst      int
	Pending          int

	RepositoriesReviewed int
	MedianResponseHours  float64
	P90ResponseHours     float64
}

type Report struct {
	Range       TimeRange
	Metrics     []ReviewMetrics
	GeneratedAt time.Time
}

// UserPR is a pull request seen from one reviewer's perspective.
type UserPR struct {
	PullRequest    pr.PullRequest
	Requested      bool
	ReviewCount    int
	LastState      pr.ReviewState
	LastReviewedAt *time.Time
}
