package pr

import "time"

type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

type ReviewState string

const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewCommented        ReviewState = "COMMENTED"
	ReviewDismissed        ReviewState = "DISMISSED"
	ReviewPending          ReviewState = "PENDING"
)

// Submitted reports whether the review left draft state on GitHub.
func (s ReviewState) Submitted() bool {
	switch s {
	case ReviewApproved, ReviewChangesRequested, ReviewCommented, ReviewDismissed:
		return true
	}
	return false
}

// Repo is a GitHub repository of the organization.
type Repo struct {
	ID            int64
	Name          string
	FullName      string
	HTMLURL       string
	Description   string
	DefaultBranch string
	Organization  string
	Active        bool
}

// Reviewer is a user whose review was requested on a pull request. Pending is
// false once GitHub dropped the request, usually because the review arrived.
type Reviewer struct {
	UserID  int64
	Login   string
	Pending bool
}

type PullRequest struct {
	ID                 int64
	Number             int
	Title              string
	HTMLURL            string
	State              State
	Draft              bool
	AuthorID           int64
	AuthorLogin        string
	RepositoryID       int64
	RepositoryName     string
	Organization       string
	RequestedReviewers []Reviewer
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ClosedAt           *time.Time
	MergedAt           *time.Time
}

func (p PullRequest) IsOpen() bool { return p.State == StateOpen }

// RequestedFrom reports whether userID was ever asked to review p.
func (p PullRequest) RequestedFrom(userID int64) bool {
	for _, r := range p.RequestedReviewers {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AwaitingReviewFrom reports whether the request for userID is still open.
func (p PullRequest) AwaitingReviewFrom(userID int64) bool {
	for _, r := range p.RequestedReviewers {
		if r.UserID == userID && r.Pending {
			return true
		}
	}
	return false
}

type Review struct {
	ID             int64
	PullRequestID  int64
	UserID         int64
	UserLogin      string
	State          ReviewState
	SubmittedAt    time.Time
	HTMLURL        string
	RepositoryName string
	Organization   string
}

// Filter narrows pull request and review listings. Zero values mean "no
// bound". For pull requests From applies to the last update and To to
// creation, IncludeOpen keeps open ones regardless of From and UserIDs match
// the author. For reviews From/To apply to submission time and UserIDs match
// the reviewer.
type Filter struct {
	Org             string
	From            time.Time
	To              time.Time
	UserIDs         []int64
	PullRequestIDs  []int64
	IncludeOpen     bool
	OpenOnly        bool
	RepositoryNames []string
}
