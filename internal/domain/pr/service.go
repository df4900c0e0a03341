package pr

import (
	"context"
	"sort"

	"reviewarena/internal/domain"
)

type Service interface {
	// Save stores a pull request together with its submitted reviews.
	// Reviews still in PENDING state are dropped.
	Save(ctx context.Context, p PullRequest, reviews []Review) error
	// SaveRepos stores the repository list of org and deactivates repositories
	// that disappeared from it.
	SaveRepos(ctx context.Context, org string, repos []Repo) (deactivated int64, err error)
	Repos(ctx context.Context, org string) ([]Repo, error)
	// ReviewQueue lists open pull requests that still wait for userID.
	ReviewQueue(ctx context.Context, org string, userID int64) ([]PullRequest, error)
}

type service struct {
	uow domain.UnitOfWork
	prs Repository
}

func NewService(uow domain.UnitOfWork, prs Repository) Service {
	return &service{
		uow: uow,
		prs: prs,
	}
}

func (s *service) Save(ctx context.Context, p PullRequest, reviews []Review) error {
	submitted := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if !r.State.Submitted() || r.SubmittedAt.IsZero() {
			continue
		}
		r.PullRequestID = p.ID
		r.RepositoryName = p.RepositoryName
		r.Organization = p.Organization
		submitted = append(submitted, r)
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.prs.UpsertPullRequest(ctx, p); err != nil {
			return err
		}
		if len(submitted) == 0 {
			return nil
		}
		return s.prs.UpsertReviews(ctx, submitted)
	})
}

func (s *service) SaveRepos(ctx context.Context, org string, repos []Repo) (int64, error) {
	var deactivated int64

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		ids := make([]int64, 0, len(repos))
		for i := range repos {
			repos[i].Organization = org
			ids = append(ids, repos[i].ID)
		}

		if err := s.prs.UpsertRepos(ctx, org, repos); err != nil {
			return err
		}

		n, err := s.prs.MarkReposInactiveExcept(ctx, org, ids)
		if err != nil {
			return err
		}
		deactivated = n
		return nil
	})

	return deactivated, err
}

func (s *service) Repos(ctx context.Context, org string) ([]Repo, error) {
	return s.prs.ListRepos(ctx, org, true)
}

func (s *service) ReviewQueue(ctx context.Context, org string, userID int64) ([]PullRequest, error) {
	open, err := s.prs.ListPullRequests(ctx, Filter{Org: org, OpenOnly: true})
	if err != nil {
		return nil, err
	}

	var queue []PullRequest
	for _, p := range open {
		if p.IsOpen() && !p.Draft && p.AuthorID != userID && p.AwaitingReviewFrom(userID) {
			queue = append(queue, p)
		}
	}

	sort.Slice(queue, func(i, j int) bool {
		return queue[i].CreatedAt.Before(queue[j].CreatedAt)
	})
	return queue, nil
}
