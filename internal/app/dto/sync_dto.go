package dto

import "time"

type SyncStatus struct {
	Type         string     `json:"sync_type"`
	State        string     `json:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
	EventType    string     `json:"event_type,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	DurationMs   int64      `json:"duration_ms"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type SyncStatusResponse struct {
	Organization string       `json:"organization"`
	Current      SyncStatus   `json:"current"`
	Statuses     []SyncStatus `json:"statuses"`
}

type SyncRequest struct {
	Type string `json:"type"`
}

type SyncResult struct {
	Type         string    `json:"type"`
	Since        time.Time `json:"since"`
	Members      int       `json:"members"`
	Deactivated  int64     `json:"deactivated"`
	Repositories int       `json:"repositories"`
	PullRequests int       `json:"pull_requests"`
	Reviews      int       `json:"reviews"`
	FailedRepos  []string  `json:"failed_repositories,omitempty"`
}

type WebhookResponse struct {
	Event         string `json:"event"`
	Action        string `json:"action,omitempty"`
	Processed     bool   `json:"processed"`
	SyncTriggered bool   `json:"sync_triggered"`
}
