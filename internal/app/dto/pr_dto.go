package dto

import "time"

type Repository struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	URL           string `json:"url"`
	Description   string `json:"description,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
}

type QueuedPullRequest struct {
	ID           int64     `json:"id"`
	Number       int       `json:"number"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Repository   string    `json:"repository"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"created_at"`
	WaitingHours float64   `json:"waiting_hours"`
}

type ReviewQueueResponse struct {
	UserID       int64               `json:"user_id"`
	Login        string              `json:"login"`
	PullRequests []QueuedPullRequest `json:"pull_requests"`
}
