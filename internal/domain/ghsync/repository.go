package ghsync

import (
	"context"
	"time"

	"reviewarena/internal/domain/member"
	"reviewarena/internal/domain/pr"
)

type Repository interface {
	// Get returns NewStatus(org, typ) when the pair has never been synced.
	Get(ctx context.Context, org string, typ Type) (Status, error)
	Save(ctx context.Context, s Status) error
	List(ctx context.Context, org string) ([]Status, error)
}

// Source reads the organization from GitHub.
type Source interface {
	ListMembers(ctx context.Context, org string) ([]member.User, error)
	ListRepos(ctx context.Context, org string) ([]pr.Repo, error)
	// ListPullRequests returns pull requests of repo updated at or after
	// since, newest first.
	ListPullRequests(ctx context.Context, org, repo string, since time.Time) ([]pr.PullRequest, error)
	ListReviews(ctx context.Context, org, repo string, number int) ([]pr.Review, error)
}

type Refresher interface {
	Refresh(ctx context.Context, userIDs []int64) error
}
