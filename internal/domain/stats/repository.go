package stats

import "context"

type Repository interface {
	GetReviewerLoad(ctx context.Context, org string, teamName *string) ([]ReviewerLoad, error)
	GetRepositoryBacklog(ctx context.Context, org string) ([]RepositoryBacklog, error)
}
