package domain

import "context"

type Event struct {
	Type    string
	Payload map[string]any
}

type EventBus interface {
	Publish(ctx context.Context, e Event)
}

const (
	EventMemberSetActive     = "member.set_active"
	EventTeamCreated         = "team.created"
	EventChallengeCreated    = "challenge.created"
	EventSyncCompleted       = "sync.completed"
	EventSyncFailed          = "sync.failed"
	EventAchievementEarned   = "gamification.achievement_earned"
	EventLevelUp             = "gamification.level_up"
	EventReviewSubmitted     = "webhook.review_submitted"
	EventPullRequestReceived = "webhook.pull_request"
)
