package dto

import "time"

type Range struct {
	Value string     `json:"value"`
	Start *time.Time `json:"start,omitempty"`
	End   time.Time  `json:"end"`
}

type ReviewMetrics struct {
	UserID    int64  `json:"user_id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`

	Assigned         int `json:"assigned"`
	Approved         int `json:"approved"`
	ChangesRequested int `json:"changes_requested"`
	Commented        int `json:"commented"`
	TotalReviewed    int `json:"total_reviewed"`
	Opened           int `json:"opened"`
	OpenAgainst      int `json:"open_against"`
	Pending          int `json:"pending"`

	RepositoriesReviewed int     `json:"repositories_reviewed"`
	MedianResponseHours  float64 `json:"median_response_hours"`
	P90ResponseHours     float64 `json:"p90_response_hours"`
}

type MetricsResponse struct {
	Range       Range           `json:"range"`
	Team        string          `json:"team,omitempty"`
	Metrics     []ReviewMetrics `json:"metrics"`
	GeneratedAt time.Time       `json:"generated_at"`
	SyncStarted bool            `json:"sync_started"`
}

type UserPullRequest struct {
	ID             int64      `json:"id"`
	Number         int        `json:"number"`
	Title          string     `json:"title"`
	URL            string     `json:"url"`
	Repository     string     `json:"repository"`
	State          string     `json:"state"`
	Author         string     `json:"author"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	MergedAt       *time.Time `json:"merged_at,omitempty"`
	Requested      bool       `json:"requested"`
	ReviewCount    int        `json:"review_count"`
	LastState      string     `json:"last_review_state,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
}

type UserPullRequestsResponse struct {
	Login        string            `json:"login"`
	Range        Range             `json:"range"`
	PullRequests []UserPullRequest `json:"pull_requests"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type ActivityResponse struct {
	Range Range        `json:"range"`
	Days  []DailyCount `json:"days"`
	Total int          `json:"total"`
}

type ReviewerLoad struct {
	UserID         int64  `json:"user_id"`
	Login          string `json:"login"`
	AssignedTotal  int    `json:"assigned_total"`
	AssignedOpen   int    `json:"assigned_open"`
	AssignedMerged int    `json:"assigned_merged"`
}

type RepositoryBacklog struct {
	Repository      string `json:"repository"`
	PullRequests    int    `json:"pull_requests"`
	Open            int    `json:"open"`
	Unreviewed      int    `json:"unreviewed"`
	PendingRequests int    `json:"pending_requests"`
}
