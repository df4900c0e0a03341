package metrics

import (
	"context"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/activity"
	"reviewarena/internal/domain/member"
	"reviewarena/internal/domain/pr"
)

type TeamResolver interface {
	MemberIDs(ctx context.Context, name string) ([]int64, error)
}

type Service interface {
	// Leaderboard aggregates review metrics of active members for the named
	// range, optionally restricted to one team.
	Leaderboard(ctx context.Context, rangeValue, teamName string) (Report, error)
	UserPullRequests(ctx context.Context, login, rangeValue string) ([]UserPR, TimeRange, error)
	// ForUsers aggregates an arbitrary window for the given users.
	ForUsers(ctx context.Context, userIDs []int64, window TimeRange) ([]ReviewMetrics, error)
	Activity(ctx context.Context, rangeValue string) ([]activity.DailyCount, TimeRange, error)
}

type service struct {
	org      string
	users    member.Repository
	prs      pr.Repository
	teams    TeamResolver
	activity activity.Service
	clock    domain.Clock
}

func NewService(
	org string,
	users member.Repository,
	prs pr.Repository,
	teams TeamResolver,
	activitySvc activity.Service,
	clock domain.Clock,
) Service {
	return &service{
		org:      org,
		users:    users,
		prs:      prs,
		teams:    teams,
		activity: activitySvc,
		clock:    clock,
	}
}

func (s *service) Leaderboard(ctx context.Context, rangeValue, teamName string) (Report, error) {
	now := s.clock.Now()
	window, err := ResolveRange(rangeValue, now)
	if err != nil {
		return Report{}, err
	}

	var ids []int64
	if teamName != "" {
		ids, err = s.teams.MemberIDs(ctx, teamName)
		if err != nil {
			return Report{}, err
		}
	}

	rows, err := s.aggregate(ctx, ids, teamName != "", window)
	if err != nil {
		return Report{}, err
	}

	return Report{Range: window, Metrics: rows, GeneratedAt: now}, nil
}

func (s *service) ForUsers(ctx context.Context, userIDs []int64, window TimeRange) ([]ReviewMetrics, error) {
	return s.aggregate(ctx, userIDs, true, window)
}

func (s *service) UserPullRequests(ctx context.Context, login, rangeValue string) ([]UserPR, TimeRange, error) {
	window, err := ResolveRange(rangeValue, s.clock.Now())
	if err != nil {
		return nil, TimeRange{}, err
	}

	u, err := s.users.GetByLogin(ctx, s.org, login)
	if err != nil {
		return nil, TimeRange{}, err
	}

	prs, reviews, err := s.load(ctx, window)
	if err != nil {
		return nil, TimeRange{}, err
	}

	return UserPullRequests(u.ID, prs, reviews, window), window, nil
}

func (s *service) Activity(ctx context.Context, rangeValue string) ([]activity.DailyCount, TimeRange, error) {
	now := s.clock.Now()
	window, err := ResolveRange(rangeValue, now)
	if err != nil {
		return nil, TimeRange{}, err
	}

	from := window.Start
	if from.IsZero() {
		// a full daily series since the first review is rarely useful
		from = now.AddDate(-1, 0, 0)
	}

	points, err := s.activity.DailyReviews(ctx, s.org, from, now)
	return points, window, err
}

func (s *service) aggregate(ctx context.Context, ids []int64, restrict bool, window TimeRange) ([]ReviewMetrics, error) {
	users, err := s.users.ListByOrg(ctx, s.org, false)
	if err != nil {
		return nil, err
	}

	prs, reviews, err := s.load(ctx, window)
	if err != nil {
		return nil, err
	}

	keep := make(map[int64]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}

	inactive := make(map[int64]bool)
	seeded := make([]member.User, 0, len(users))
	for _, u := range users {
		if !u.Active {
			inactive[u.ID] = true
			continue
		}
		if restrict && !keep[u.ID] {
			continue
		}
		seeded = append(seeded, u)
	}

	rows := Aggregate(seeded, prs, reviews, window)
	out := rows[:0]
	for _, r := range rows {
		if inactive[r.UserID] || (restrict && !keep[r.UserID]) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// load returns pull requests touched in the window plus every open one, and
// reviews submitted in the window plus all reviews on open pull requests.
func (s *service) load(ctx context.Context, window TimeRange) ([]pr.PullRequest, []pr.Review, error) {
	prs, err := s.prs.ListPullRequests(ctx, pr.Filter{Org: s.org, From: window.Start, IncludeOpen: true})
	if err != nil {
		return nil, nil, err
	}

	reviews, err := s.prs.ListReviews(ctx, pr.Filter{Org: s.org, From: window.Start, To: window.End})
	if err != nil {
		return nil, nil, err
	}

	var openIDs []int64
	for _, p := range prs {
		if p.IsOpen() {
			openIDs = append(openIDs, p.ID)
		}
	}
	if len(openIDs) == 0 {
		return prs, reviews, nil
	}

	onOpen, err := s.prs.ListReviews(ctx, pr.Filter{Org: s.org, PullRequestIDs: openIDs})
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[int64]bool, len(reviews))
	for _, r := range reviews {
		seen[r.ID] = true
	}
	for _, r := range onOpen {
		if !seen[r.ID] {
			reviews = append(reviews, r)
		}
	}
	return prs, reviews, nil
}
