package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/activity"
	"reviewarena/internal/domain/member"
	"reviewarena/internal/domain/metrics"
	"reviewarena/internal/domain/pr"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type usersFake struct{ list []member.User }

func (u *usersFake) UpsertMany(ctx context.Context, org string, users []member.User) error {
	return nil
}
func (u *usersFake) MarkInactiveExcept(ctx context.Context, org string, keepIDs []int64) (int64, error) {
	return 0, nil
}
func (u *usersFake) SetActive(ctx context.Context, id int64, active bool) (member.User, error) {
	return member.User{}, nil
}
func (u *usersFake) GetByID(ctx context.Context, id int64) (member.User, error) {
	for _, x := range u.list {
		if x.ID == id {
			return x, nil
		}
	}
	return member.User{}, domain.NotFound("user not found")
}
func (u *usersFake) GetByLogin(ctx context.Context, org, login string) (member.User, error) {
	for _, x := range u.list {
		if x.Login == login {
			return x, nil
		}
	}
	return member.User{}, domain.NotFound("user not found")
}
func (u *usersFake) ListByOrg(ctx context.Context, org string, activeOnly bool) ([]member.User, error) {
	var res []member.User
	for _, x := range u.list {
		if !activeOnly || x.Active {
			res = append(res, x)
		}
	}
	return res, nil
}

type prsFake struct {
	prs     []pr.PullRequest
	reviews []pr.Review
	filters []pr.Filter
}

func (p *prsFake) UpsertRepos(ctx context.Context, org string, repos []pr.Repo) error { return nil }
func (p *prsFake) MarkReposInactiveExcept(ctx context.Context, org string, keepIDs []int64) (int64, error) {
	return 0, nil
}
func (p *prsFake) ListRepos(ctx context.Context, org string, activeOnly bool) ([]pr.Repo, error) {
	return nil, nil
}
func (p *prsFake) UpsertPullRequest(ctx context.Context, x pr.PullRequest) error  { return nil }
func (p *prsFake) UpsertReviews(ctx context.Context, reviews []pr.Review) error { return nil }
func (p *prsFake) ListPullRequests(ctx context.Context, f pr.Filter) ([]pr.PullRequest, error) {
	return p.prs, nil
}
func (p *prsFake) ListReviews(ctx context.Context, f pr.Filter) ([]pr.Review, error) {
	p.filters = append(p.filters, f)
	if len(f.PullRequestIDs) > 0 {
		var res []pr.Review
		for _, r := range p.reviews {
			for _, id := range f.PullRequestIDs {
				if r.PullRequestID == id {
					res = append(res, r)
				}
			}
		}
		return res, nil
	}
	var res []pr.Review
	for _, r := range p.reviews {
		if !f.From.IsZero() && r.SubmittedAt.Before(f.From) {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

type teamsFake map[string][]int64

func (t teamsFake) MemberIDs(ctx context.Context, name string) ([]int64, error) {
	ids, ok := t[name]
	if !ok {
		return nil, domain.NotFound("team not found")
	}
	return ids, nil
}

type activityFake struct{ from, to time.Time }

func (a *activityFake) Record(ctx context.Context, entries ...activity.Entry) error { return nil }
func (a *activityFake) IsHighActivity(ctx context.Context, org, repo string) (bool, error) {
	return false, nil
}
func (a *activityFake) DailyReviews(ctx context.Context, org string, from, to time.Time) ([]activity.DailyCount, error) {
	a.from, a.to = from, to
	return []activity.DailyCount{{Day: from, Count: 1}}, nil
}

func newFixture() (*usersFake, *prsFake) {
	users := &usersFake{list: []member.User{
		{ID: 1, Login: "alice", Active: true},
		{ID: 2, Login: "bob", Active: true},
		{ID: 3, Login: "gone", Active: false},
	}}
	prs := &prsFake{
		prs: []pr.PullRequest{
			{ID: 10, AuthorID: 2, State: pr.StateOpen, CreatedAt: now.Add(-10 * time.Hour),
				RequestedReviewers: []pr.Reviewer{{UserID: 1, Pending: true}}},
		},
		reviews: []pr.Review{
			{ID: 1, PullRequestID: 10, UserID: 3, State: pr.ReviewApproved, SubmittedAt: now.Add(-2 * time.Hour)},
			{ID: 2, PullRequestID: 10, UserID: 2, State: pr.ReviewCommented, SubmittedAt: now.Add(-1 * time.Hour)},
		},
	}
	return users, prs
}

func TestLeaderboard_HidesInactiveMembers(t *testing.T) {
	users, prs := newFixture()
	svc := metrics.NewService("acme", users, prs, teamsFake{}, &activityFake{}, fixedClock{now})

	rep, err := svc.Leaderboard(context.Background(), "week", "")
	require.NoError(t, err)

	require.Len(t, rep.Metrics, 2)
	assert.Equal(t, "bob", rep.Metrics[0].Login)
	assert.Equal(t, "alice", rep.Metrics[1].Login)
	assert.Equal(t, 1, rep.Metrics[1].Pending)
	assert.Equal(t, metrics.RangeWeek, rep.Range.Value)

	// reviews on open pull requests are loaded on top of the window
	require.Len(t, prs.filters, 2)
	assert.Equal(t, []int64{10}, prs.filters[1].PullRequestIDs)
}

func TestLeaderboard_TeamFilter(t *testing.T) {
	users, prs := newFixture()
	svc := metrics.NewService("acme", users, prs, teamsFake{"core": {1}}, &activityFake{}, fixedClock{now})

	rep, err := svc.Leaderboard(context.Background(), "month", "core")
	require.NoError(t, err)
	require.Len(t, rep.Metrics, 1)
	assert.Equal(t, "alice", rep.Metrics[0].Login)

	_, err = svc.Leaderboard(context.Background(), "month", "missing")
	require.Error(t, err)
}

func TestLeaderboard_InvalidRange(t *testing.T) {
	users, prs := newFixture()
	svc := metrics.NewService("acme", users, prs, teamsFake{}, &activityFake{}, fixedClock{now})

	_, err := svc.Leaderboard(context.Background(), "forever", "")
	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrorCodeBadRequest, de.Code)
}

func TestUserPullRequests_UnknownLogin(t *testing.T) {
	users, prs := newFixture()
	svc := metrics.NewService("acme", users, prs, teamsFake{}, &activityFake{}, fixedClock{now})

	_, _, err := svc.UserPullRequests(context.Background(), "nobody", "week")
	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrorCodeNotFound, de.Code)

	list, _, err := svc.UserPullRequests(context.Background(), "bob", "week")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(10), list[0].PullRequest.ID)
}

func TestActivity_AllRangeCapsToOneYear(t *testing.T) {
	users, prs := newFixture()
	act := &activityFake{}
	svc := metrics.NewService("acme", users, prs, teamsFake{}, act, fixedClock{now})

	points, tr, err := svc.Activity(context.Background(), "all")
	require.NoError(t, err)
	assert.Len(t, points, 1)
	assert.Equal(t, metrics.RangeAll, tr.Value)
	assert.Equal(t, now.AddDate(-1, 0, 0), act.from)
	assert.Equal(t, now, act.to)
}
