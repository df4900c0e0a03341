package webhook_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/activity"
	"reviewarena/internal/domain/ghsync"
	"reviewarena/internal/domain/pr"
	"reviewarena/internal/domain/webhook"
)

var now = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type clockFake struct{}

func (clockFake) Now() time.Time { return now }

type prSvcFake struct {
	saved   []pr.PullRequest
	reviews []pr.Review
}

func (p *prSvcFake) Save(ctx context.Context, x pr.PullRequest, reviews []pr.Review) error {
	p.saved = append(p.saved, x)
	p.reviews = append(p.reviews, reviews...)
	return nil
}
func (p *prSvcFake) SaveRepos(ctx context.Context, org string, repos []pr.Repo) (int64, error) {
	return 0, nil
}
func (p *prSvcFake) Repos(ctx context.Context, org string) ([]pr.Repo, error) { return nil, nil }
func (p *prSvcFake) ReviewQueue(ctx context.Context, org string, userID int64) ([]pr.PullRequest, error) {
	return nil, nil
}

type activityFake struct {
	entries []activity.Entry
	busy    bool
}

func (a *activityFake) Record(ctx context.Context, entries ...activity.Entry) error {
	a.entries = append(a.entries, entries...)
	return nil
}
func (a *activityFake) IsHighActivity(ctx context.Context, org, repo string) (bool, error) {
	return a.busy, nil
}
func (a *activityFake) DailyReviews(ctx context.Context, org string, from, to time.Time) ([]activity.DailyCount, error) {
	return nil, nil
}

type syncFake struct {
	recorded   []string
	triggered  []ghsync.Type
	last       *time.Time
	triggerErr error
}

func (s *syncFake) Run(ctx context.Context, typ ghsync.Type) (ghsync.Result, error) {
	return ghsync.Result{}, nil
}
func (s *syncFake) RunScheduled(ctx context.Context) (ghsync.Result, error) {
	return ghsync.Result{}, nil
}
func (s *syncFake) Trigger(typ ghsync.Type) error {
	if s.triggerErr != nil {
		return s.triggerErr
	}
	s.triggered = append(s.triggered, typ)
	return nil
}
func (s *syncFake) EnsureFresh(ctx context.Context) (bool, error) { return false, nil }
func (s *syncFake) RecordWebhook(ctx context.Context, eventType string) error {
	s.recorded = append(s.recorded, eventType)
	return nil
}
func (s *syncFake) LastCompleted(ctx context.Context, types ...ghsync.Type) (*time.Time, error) {
	return s.last, nil
}
func (s *syncFake) Statuses(ctx context.Context) ([]ghsync.Status, error) { return nil, nil }

type busFake struct{ events []domain.Event }

func (b *busFake) Publish(ctx context.Context, e domain.Event) { b.events = append(b.events, e) }

type fixture struct {
	svc      webhook.Service
	prs      *prSvcFake
	activity *activityFake
	sync     *syncFake
	bus      *busFake
}

func newFixture() fixture {
	f := fixture{prs: &prSvcFake{}, activity: &activityFake{}, sync: &syncFake{}, bus: &busFake{}}
	f.svc = webhook.NewService("acme", f.prs, f.activity, f.sync, f.bus, clockFake{}, zap.NewNop(), 4*time.Hour)
	return f
}

func pullRequest() *pr.PullRequest {
	return &pr.PullRequest{
		ID:             42,
		Number:         7,
		State:          pr.StateOpen,
		AuthorID:       1,
		AuthorLogin:    "alice",
		RepositoryID:   9,
		RepositoryName: "api",
		CreatedAt:      now.Add(-time.Minute),
		UpdatedAt:      now,
	}
}

func TestHandle_PullRequestOpened(t *testing.T) {
	f := newFixture()

	out, err := f.svc.Handle(context.Background(), webhook.Event{
		Name:         webhook.EventPullRequest,
		Action:       "opened",
		Organization: "acme",
		PullRequest:  pullRequest(),
	})
	require.NoError(t, err)

	assert.True(t, out.Processed)
	assert.False(t, out.SyncTriggered, "quiet repository")
	require.Len(t, f.prs.saved, 1)
	assert.Equal(t, "acme", f.prs.saved[0].Organization)

	require.Len(t, f.activity.entries, 1)
	e := f.activity.entries[0]
	assert.Equal(t, activity.TypePROpened, e.Type)
	assert.Equal(t, now.Add(-time.Minute), e.OccurredAt)
	assert.Equal(t, []string{"pull_request"}, f.sync.recorded)
	require.Len(t, f.bus.events, 1)
	assert.Equal(t, domain.EventPullRequestReceived, f.bus.events[0].Type)
}

func TestHandle_PullRequestOnBusyRepoTriggersSync(t *testing.T) {
	f := newFixture()
	f.activity.busy = true

	out, err := f.svc.Handle(context.Background(), webhook.Event{
		Name:        webhook.EventPullRequest,
		Action:      "closed",
		PullRequest: pullRequest(),
	})
	require.NoError(t, err)
	assert.True(t, out.SyncTriggered)
	assert.Equal(t, []ghsync.Type{ghsync.TypeIncremental}, f.sync.triggered)
	assert.Equal(t, activity.TypePRClosed, f.activity.entries[0].Type)
}

func TestHandle_PullRequestOtherActionIgnored(t *testing.T) {
	f := newFixture()

	out, err := f.svc.Handle(context.Background(), webhook.Event{
		Name:        webhook.EventPullRequest,
		Action:      "labeled",
		PullRequest: pullRequest(),
	})
	require.NoError(t, err)
	assert.False(t, out.Processed)
	assert.Empty(t, f.prs.saved)
	assert.Empty(t, f.sync.recorded)
}

func TestHandle_ReviewSubmitted(t *testing.T) {
	f := newFixture()
	f.sync.triggerErr = &domain.DomainError{Code: domain.ErrorCodeSyncInProgress}

	out, err := f.svc.Handle(context.Background(), webhook.Event{
		Name:        webhook.EventPullRequestReview,
		Action:      "submitted",
		PullRequest: pullRequest(),
		Review: &pr.Review{
			ID:          500,
			UserID:      2,
			UserLogin:   "bob",
			State:       pr.ReviewChangesRequested,
			SubmittedAt: now,
		},
	})
	require.NoError(t, err)

	assert.True(t, out.Processed)
	assert.False(t, out.SyncTriggered, "running sync already covers the delivery")
	require.Len(t, f.prs.reviews, 1)

	require.Len(t, f.activity.entries, 1)
	e := f.activity.entries[0]
	assert.Equal(t, activity.TypeReviewedPR, e.Type)
	assert.Equal(t, "CHANGES_REQUESTED", e.ReviewState)
	assert.Equal(t, int64(500), e.ReviewID)

	assert.Equal(t, []string{"pull_request_review"}, f.sync.recorded)
	require.Len(t, f.bus.events, 1)
	assert.Equal(t, domain.EventReviewSubmitted, f.bus.events[0].Type)
	assert.Equal(t, int64(2), f.bus.events[0].Payload["user_id"])
}

func TestHandle_Push(t *testing.T) {
	recent := now.Add(-time.Hour)
	stale := now.Add(-5 * time.Hour)

	cases := []struct {
		name      string
		ref       string
		last      *time.Time
		processed bool
		triggered bool
	}{
		{"feature branch", "refs/heads/feature", nil, false, false},
		{"never synced", "refs/heads/main", nil, true, true},
		{"recent sync", "refs/heads/main", &recent, true, false},
		{"stale sync", "refs/heads/main", &stale, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.sync.last = tc.last

			out, err := f.svc.Handle(context.Background(), webhook.Event{
				Name:          webhook.EventPush,
				Repository:    "api",
				DefaultBranch: "main",
				Ref:           tc.ref,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.processed, out.Processed)
			assert.Equal(t, tc.triggered, out.SyncTriggered)
		})
	}
}

func TestHandle_IgnoredDeliveries(t *testing.T) {
	f := newFixture()

	for _, e := range []webhook.Event{
		{Name: webhook.EventPing},
		{Name: "issues", Action: "opened"},
		{Name: webhook.EventPullRequest, Action: "opened", Organization: "other", PullRequest: pullRequest()},
	} {
		out, err := f.svc.Handle(context.Background(), e)
		require.NoError(t, err)
		assert.False(t, out.Processed, e.Name)
	}
	assert.Empty(t, f.prs.saved)
	assert.Empty(t, f.sync.recorded)
}
