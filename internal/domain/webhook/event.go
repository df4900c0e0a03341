package webhook

import "reviewarena/internal/domain/pr"

const (
	EventPullRequest       = "pull_request"
	EventPullRequestReview = "pull_request_review"
	EventPush              = "push"
	EventPing              = "ping"
)

// Event is a verified GitHub delivery reduced to what the service acts on.
// PullRequest is set for pull_request and pull_request_review events, Review
// only for the latter.
type Event struct {
	Name          string
	DeliveryID    string
	Action        string
	Organization  string
	Repository    string
	DefaultBranch string
	Ref           string
	PullRequest   *pr.PullRequest
	Review        *pr.Review
}

// Outcome describes what a delivery caused.
type Outcome struct {
	Event         string
	Action        string
	Processed     bool
	SyncTriggered bool
}
