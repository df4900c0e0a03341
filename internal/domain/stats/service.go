package stats

import (
	"context"
	"strings"
)

type Service interface {
	// ReviewerLoad lists active members by open review requests. A non-empty
	// teamName restricts the list to that team.
	ReviewerLoad(ctx context.Context, teamName string) ([]ReviewerLoad, error)
	RepositoryBacklog(ctx context.Context) ([]RepositoryBacklog, error)
}

type service struct {
	org  string
	repo Repository
}

func NewService(org string, repo Repository) Service {
	return &service{org: org, repo: repo}
}

func (s *service) ReviewerLoad(ctx context.Context, teamName string) ([]ReviewerLoad, error) {
	var team *string
	if name := strings.TrimSpace(teamName); name != "" {
		team = &name
	}
	res, err := s.repo.GetReviewerLoad(ctx, s.org, team)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []ReviewerLoad{}
	}
	return res, nil
}

func (s *service) RepositoryBacklog(ctx context.Context) ([]RepositoryBacklog, error) {
	res, err := s.repo.GetRepositoryBacklog(ctx, s.org)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []RepositoryBacklog{}
	}
	return res, nil
}
