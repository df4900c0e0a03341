package gamification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/gamification"
	"reviewarena/internal/domain/member"
	"reviewarena/internal/domain/pr"
)

type uowStub struct{}

func (uowStub) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type eventBusFake struct{ events []domain.Event }

func (e *eventBusFake) Publish(ctx context.Context, ev domain.Event) { e.events = append(e.events, ev) }

type clockFake struct{ now time.Time }

func (c *clockFake) Now() time.Time { return c.now }

type usersFake map[int64]member.User

func (u usersFake) UpsertMany(ctx context.Context, org string, users []member.User) error {
	return nil
}
func (u usersFake) MarkInactiveExcept(ctx context.Context, org string, keepIDs []int64) (int64, error) {
	return 0, nil
}
func (u usersFake) SetActive(ctx context.Context, id int64, active bool) (member.User, error) {
	return member.User{}, nil
}
func (u usersFake) GetByID(ctx context.Context, id int64) (member.User, error) {
	x, ok := u[id]
	if !ok {
		return member.User{}, domain.NotFound("user not found")
	}
	return x, nil
}
func (u usersFake) GetByLogin(ctx context.Context, org, login string) (member.User, error) {
	return member.User{}, domain.NotFound("user not found")
}
func (u usersFake) ListByOrg(ctx context.Context, org string, activeOnly bool) ([]member.User, error) {
	return nil, nil
}

type prsFake struct {
	prs     []pr.PullRequest
	reviews []pr.Review
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
	var out []pr.Review
	for _, r := range p.reviews {
		if len(f.UserIDs) == 0 || r.UserID == f.UserIDs[0] {
			out = append(out, r)
		}
	}
	return out, nil
}

type gameRepoFake struct {
	profiles     map[int64]gamification.Profile
	achievements map[int64]map[string]gamification.UserAchievement
	notes        []gamification.Notification
	saves        int
}

func newGameRepoFake() *gameRepoFake {
	return &gameRepoFake{
		profiles:     map[int64]gamification.Profile{},
		achievements: map[int64]map[string]gamification.UserAchievement{},
	}
}

func (r *gameRepoFake) GetProfile(ctx context.Context, userID int64) (gamification.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return gamification.Profile{}, domain.NotFound("profile not found")
	}
	return p, nil
}
func (r *gameRepoFake) SaveProfile(ctx context.Context, p gamification.Profile) error {
	r.profiles[p.UserID] = p
	return nil
}
func (r *gameRepoFake) ListAchievements(ctx context.Context, userID int64) ([]gamification.UserAchievement, error) {
	var out []gamification.UserAchievement
	for _, a := range r.achievements[userID] {
		out = append(out, a)
	}
	return out, nil
}
func (r *gameRepoFake) SaveAchievements(ctx context.Context, userID int64, items []gamification.UserAchievement) error {
	r.saves++
	if r.achievements[userID] == nil {
		r.achievements[userID] = map[string]gamification.UserAchievement{}
	}
	for _, i := range items {
		r.achievements[userID][i.AchievementID] = i
	}
	return nil
}
func (r *gameRepoFake) AddNotifications(ctx context.Context, items []gamification.Notification) error {
	r.notes = append(r.notes, items...)
	return nil
}
func (r *gameRepoFake) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]gamification.Notification, error) {
	return r.notes, nil
}
func (r *gameRepoFake) MarkNotificationsRead(ctx context.Context, userID int64, ids []string) (int64, error) {
	return int64(len(ids)), nil
}

func reviewsOn(userID int64, start time.Time, n int, state pr.ReviewState) []pr.Review {
	out := make([]pr.Review, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, pr.Review{
			ID:             int64(userID*1000) + int64(i),
			PullRequestID:  int64(i + 1),
			UserID:         userID,
			State:          state,
			SubmittedAt:    start.Add(time.Duration(i) * time.Hour),
			RepositoryName: "api",
		})
	}
	return out
}

type fixture struct {
	svc    gamification.Service
	repo   *gameRepoFake
	prs    *prsFake
	events *eventBusFake
	clock  *clockFake
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	c, err := gamification.DefaultCatalog()
	require.NoError(t, err)

	f := fixture{
		repo:   newGameRepoFake(),
		prs:    &prsFake{},
		events: &eventBusFake{},
		clock:  &clockFake{now: time.Date(2024, 6, 12, 18, 0, 0, 0, time.UTC)},
	}
	users := usersFake{1: {ID: 1, Login: "alice", Active: true}}
	f.svc = gamification.NewService("acme", uowStub{}, f.repo, users, f.prs, f.events, f.clock, c, time.UTC)
	return f
}

func TestRefresh_CreatesProfileAndAwardsAchievements(t *testing.T) {
	f := newFixture(t)
	f.prs.reviews = reviewsOn(1, time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC), 3, pr.ReviewApproved)

	require.NoError(t, f.svc.Refresh(context.Background(), []int64{1, 1}))

	p := f.repo.profiles[1]
	// 3 reviews * (10 + 15) + 1 streak day * 5 + first_review * 50
	assert.Equal(t, 75+5+50, p.XP)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 1, p.CurrentStreak)
	assert.Equal(t, "alice", p.Login)

	require.Len(t, f.repo.notes, 1, "new profiles get no level-up notification")
	assert.Equal(t, gamification.NotificationAchievement, f.repo.notes[0].Type)
	assert.NotEmpty(t, f.repo.notes[0].ID)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, domain.EventAchievementEarned, f.events.events[0].Type)
	assert.Equal(t, "first_review", f.events.events[0].Payload["achievement_id"])
}

func TestRefresh_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.prs.reviews = reviewsOn(1, time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC), 3, pr.ReviewApproved)

	require.NoError(t, f.svc.Refresh(context.Background(), []int64{1}))
	before := f.repo.profiles[1]
	saves := f.repo.saves

	f.clock.now = f.clock.now.Add(time.Hour)
	require.NoError(t, f.svc.Refresh(context.Background(), []int64{1}))

	after := f.repo.profiles[1]
	assert.Equal(t, before.XP, after.XP)
	assert.Equal(t, saves, f.repo.saves, "unchanged achievements are not written again")
	assert.Len(t, f.repo.notes, 1)
}

func TestRefresh_LevelUpNotification(t *testing.T) {
	f := newFixture(t)
	f.repo.profiles[1] = gamification.Profile{UserID: 1, Login: "alice", XP: 120, Level: 2}
	f.prs.reviews = reviewsOn(1, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), 12, pr.ReviewChangesRequested)

	require.NoError(t, f.svc.Refresh(context.Background(), []int64{1}))

	p := f.repo.profiles[1]
	assert.GreaterOrEqual(t, p.Level, 3)

	var levelUps int
	for _, n := range f.repo.notes {
		if n.Type == gamification.NotificationLevelUp {
			levelUps++
		}
	}
	assert.Equal(t, 1, levelUps)

	var sawLevelEvent bool
	for _, e := range f.events.events {
		if e.Type == domain.EventLevelUp {
			sawLevelEvent = true
		}
	}
	assert.True(t, sawLevelEvent)
}

func TestRefresh_NeverLowersXP(t *testing.T) {
	f := newFixture(t)
	f.repo.profiles[1] = gamification.Profile{UserID: 1, Login: "alice", XP: 5000, Level: 8}

	require.NoError(t, f.svc.Refresh(context.Background(), []int64{1}))

	assert.Equal(t, 5000, f.repo.profiles[1].XP)
	assert.Equal(t, 8, f.repo.profiles[1].Level)
}

func TestRefresh_UnknownUserIsReported(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Refresh(context.Background(), []int64{99})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh user 99")
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	f.repo.profiles[1] = gamification.Profile{UserID: 1, Login: "alice", XP: 200, Level: 2}

	view, err := f.svc.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Level.Level)
	require.NotNil(t, view.NextLevel)
	assert.Equal(t, 3, view.NextLevel.Level)
	assert.Equal(t, 100, view.XPToNextLevel)
	assert.InDelta(t, 50.0, view.LevelProgress, 0.001)
	assert.Equal(t, 23, view.AchievementsTotal)
}

func TestProfile_MemberWithoutStoredProfile(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Profile.Login)
	assert.Zero(t, view.Profile.XP)
	assert.Equal(t, 1, view.Level.Level)
	assert.Equal(t, 100, view.XPToNextLevel)
	assert.NotContains(t, f.repo.profiles, int64(1), "reads do not persist a profile")

	_, err = f.svc.Profile(context.Background(), 99)
	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrorCodeNotFound, de.Code)
}

func TestAchievements_MasksSecretsAndFiltersRange(t *testing.T) {
	f := newFixture(t)
	earned := f.clock.now.Add(-48 * time.Hour)
	old := f.clock.now.AddDate(0, -6, 0)
	f.repo.achievements[1] = map[string]gamification.UserAchievement{
		"first_review":    {AchievementID: "first_review", Progress: 1, Completed: true, EarnedAt: &old},
		"speed_demon":     {AchievementID: "speed_demon", Progress: 1, Completed: true, EarnedAt: &earned},
		"weekend_warrior": {AchievementID: "weekend_warrior", Progress: 0},
	}

	all, err := f.svc.Achievements(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Len(t, all, 23)
	for _, v := range all {
		if v.Achievement.ID == "weekend_warrior" {
			assert.Equal(t, "???", v.Achievement.Name)
		}
	}

	week, err := f.svc.Achievements(context.Background(), 1, "week")
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, "speed_demon", week[0].Achievement.ID)
	assert.InDelta(t, 100.0, week[0].ProgressPercent, 0.001)
}

func TestMarkNotificationsRead_ValidatesIDs(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.MarkNotificationsRead(context.Background(), 1, []string{"not-a-uuid"})
	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrorCodeBadRequest, de.Code)

	n, err := f.svc.MarkNotificationsRead(context.Background(), 1, []string{"2b1a6b52-9a7e-4f3e-8a51-3f0f5a8ad9a1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
