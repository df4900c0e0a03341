package activity

import "time"

type Type string

const (
	TypeOpenedPR   Type = "opened_pr"
	TypeReviewedPR Type = "reviewed_pr"
	TypePROpened   Type = "pr_opened"
	TypePRClosed   Type = "pr_closed"
	TypePRReopened Type = "pr_reopened"
)

// Entry is one line of the activity log. The tuple (UserID, Type, Repository,
// PRNumber, ReviewID) identifies it, so recording the same entry twice is a
// no-op.
type Entry struct {
	UserID       int64
	Login        string
	Organization string
	Type         Type
	ReviewState  string
	Repository   string
	PRNumber     int
	ReviewID     int64
	OccurredAt   time.Time
}

type DailyCount struct {
	Day   time.Time
	Count int
}
