package pr

import "context"

type Repository interface {
	UpsertRepos(ctx context.Context, org string, repos []Repo) error
	MarkReposInactiveExcept(ctx context.Context, org string, keepIDs []int64) (int64, error)
	ListRepos(ctx context.Context, org string, activeOnly bool) ([]Repo, error)

	UpsertPullRequest(ctx context.Context, p PullRequest) error
	UpsertReviews(ctx context.Context, reviews []Review) error

	ListPullRequests(ctx context.Context, f Filter) ([]PullRequest, error)
	ListReviews(ctx context.Context, f Filter) ([]Review, error)
}
