package ghsync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/activity"
	"reviewarena/internal/domain/member"
	"reviewarena/internal/domain/pr"
)

type Options struct {
	Staleness           time.Duration
	HistoricalInterval  time.Duration
	HistoricalLookback  time.Duration
	IncrementalFallback time.Duration
	LockTimeout         time.Duration
	RepoConcurrency     int
}

type Result struct {
	Type         Type
	Since        time.Time
	Members      int
	Deactivated  int64
	Repositories int
	PullRequests int
	Reviews      int
	FailedRepos  []string
}

type Service interface {
	// Run executes an incremental, historical or full sync. Concurrent calls
	// of the same type share a single run and its result; a call of another
	// type fails with SYNC_IN_PROGRESS while a run is active.
	Run(ctx context.Context, typ Type) (Result, error)
	// RunScheduled picks historical once per HistoricalInterval and
	// incremental otherwise, and tracks the choice in the scheduled status.
	RunScheduled(ctx context.Context) (Result, error)
	// Trigger starts Run in the background.
	Trigger(typ Type) error
	// EnsureFresh triggers an incremental sync when cached data is older than
	// the staleness threshold. It reports whether a sync was started.
	EnsureFresh(ctx context.Context) (bool, error)
	RecordWebhook(ctx context.Context, eventType string) error
	LastCompleted(ctx context.Context, types ...Type) (*time.Time, error)
	Statuses(ctx context.Context) ([]Status, error)
}

type service struct {
	org      string
	statuses Repository
	source   Source
	members  member.Service
	prs      pr.Service
	activity activity.Service
	gamer    Refresher
	runner   domain.TaskRunner
	events   domain.EventBus
	clock    domain.Clock
	log      *zap.Logger
	opts     Options

	flight  singleflight.Group
	running sync.Mutex
	pending atomic.Bool
}

func NewService(
	org string,
	statuses Repository,
	source Source,
	members member.Service,
	prs pr.Service,
	activitySvc activity.Service,
	gamer Refresher,
	runner domain.TaskRunner,
	events domain.EventBus,
	clock domain.Clock,
	log *zap.Logger,
	opts Options,
) Service {
	if opts.RepoConcurrency <= 0 {
		opts.RepoConcurrency = 1
	}
	return &service{
		org:      org,
		statuses: statuses,
		source:   source,
		members:  members,
		prs:      prs,
		activity: activitySvc,
		gamer:    gamer,
		runner:   runner,
		events:   events,
		clock:    clock,
		log:      log.With(zap.String("org", org)),
		opts:     opts,
	}
}

func inProgress(typ Type) error {
	return &domain.DomainError{
		Code:       domain.ErrorCodeSyncInProgress,
		Message:    fmt.Sprintf("%s sync is already running", typ),
		HTTPStatus: http.StatusConflict,
	}
}

var errRunnerClosed = &domain.DomainError{
	Code:       domain.ErrorCodeGitHubUnavailable,
	Message:    "sync runner is shut down",
	HTTPStatus: http.StatusServiceUnavailable,
}

func (s *service) Run(ctx context.Context, typ Type) (Result, error) {
	switch typ {
	case TypeIncremental, TypeHistorical, TypeFull:
	default:
		return Result{}, domain.BadRequest("sync type must be one of: incremental, historical, full")
	}

	v, err, _ := s.flight.Do(s.org+":"+string(typ), func() (any, error) {
		return s.run(ctx, typ)
	})
	res, _ := v.(Result)
	return res, err
}

func (s *service) run(ctx context.Context, typ Type) (Result, error) {
	// One run per org at a time, whatever its type.
	if !s.running.TryLock() {
		return Result{}, inProgress(typ)
	}
	defer s.running.Unlock()

	now := s.clock.Now()

	st, err := s.statuses.Get(ctx, s.org, typ)
	if err != nil {
		return Result{}, err
	}
	if st.Running(s.opts.LockTimeout, now) {
		return Result{}, inProgress(typ)
	}

	since, err := s.since(ctx, typ, now)
	if err != nil {
		return Result{}, err
	}

	st = st.Begin(now)
	if err := s.statuses.Save(ctx, st); err != nil {
		return Result{}, err
	}
	s.log.Info("sync started", zap.String("type", string(typ)), zap.Time("since", since))

	res, runErr := s.sync(ctx, typ, since)
	end := s.clock.Now()
	// the status must be written even when ctx was cancelled
	saveCtx := context.WithoutCancel(ctx)

	if runErr != nil {
		if err := s.statuses.Save(saveCtx, st.Fail(end, runErr)); err != nil {
			s.log.Error("save failed sync status", zap.Error(err))
		}
		s.log.Error("sync failed", zap.String("type", string(typ)), zap.Error(runErr))
		s.publish(saveCtx, domain.EventSyncFailed, typ, res)
		return res, runErr
	}

	var note string
	if len(res.FailedRepos) > 0 {
		note = fmt.Sprintf("%d of %d repositories failed: %s",
			len(res.FailedRepos), res.Repositories, strings.Join(res.FailedRepos, ", "))
	}
	if err := s.statuses.Save(saveCtx, st.Complete(end, note)); err != nil {
		return res, err
	}

	s.log.Info("sync completed",
		zap.String("type", string(typ)),
		zap.Int("members", res.Members),
		zap.Int("repositories", res.Repositories),
		zap.Int("pull_requests", res.PullRequests),
		zap.Int("reviews", res.Reviews),
		zap.Int("failed_repositories", len(res.FailedRepos)),
		zap.Duration("took", end.Sub(now)),
	)
	s.publish(saveCtx, domain.EventSyncCompleted, typ, res)
	return res, nil
}

func (s *service) since(ctx context.Context, typ Type, now time.Time) (time.Time, error) {
	switch typ {
	case TypeFull:
		return time.Time{}, nil
	case TypeHistorical:
		return now.Add(-s.opts.HistoricalLookback), nil
	}

	last, err := s.LastCompleted(ctx, TypeIncremental, TypeHistorical, TypeFull)
	if err != nil {
		return time.Time{}, err
	}
	if last == nil {
		return now.Add(-s.opts.IncrementalFallback), nil
	}
	return *last, nil
}

func (s *service) sync(ctx context.Context, typ Type, since time.Time) (Result, error) {
	res := Result{Type: typ, Since: since}

	users, err := s.source.ListMembers(ctx, s.org)
	if err != nil {
		return res, unavailable("list members", err)
	}
	res.Members = len(users)
	if res.Deactivated, err = s.members.Replace(ctx, s.org, users); err != nil {
		return res, err
	}

	repos, err := s.source.ListRepos(ctx, s.org)
	if err != nil {
		return res, unavailable("list repositories", err)
	}
	if _, err := s.prs.SaveRepos(ctx, s.org, repos); err != nil {
		return res, err
	}

	var (
		mu      sync.Mutex
		touched = make(map[int64]bool)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.RepoConcurrency)

	for _, repo := range repos {
		if !repo.Active {
			continue
		}
		res.Repositories++

		g.Go(func() error {
			stats, ids, err := s.syncRepo(gctx, repo, since)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				s.log.Warn("repository sync failed", zap.String("repo", repo.Name), zap.Error(err))
				res.FailedRepos = append(res.FailedRepos, repo.Name)
				return nil
			}

			res.PullRequests += stats.pullRequests
			res.Reviews += stats.reviews
			for id := range ids {
				touched[id] = true
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}
	sort.Strings(res.FailedRepos)

	if res.Repositories > 0 && len(res.FailedRepos) == res.Repositories {
		return res, unavailable("sync repositories", errors.New("every repository failed"))
	}

	ids := make([]int64, 0, len(touched))
	if typ == TypeIncremental {
		for id := range touched {
			ids = append(ids, id)
		}
	} else {
		for _, u := range users {
			ids = append(ids, u.ID)
		}
	}

	if err := s.gamer.Refresh(ctx, ids); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return res, cerr
		}
		// reviewers outside the organization have no profile to refresh
		s.log.Warn("gamification refresh incomplete", zap.Error(err))
	}
	return res, nil
}

type repoStats struct {
	pullRequests int
	reviews      int
}

func (s *service) syncRepo(ctx context.Context, repo pr.Repo, since time.Time) (repoStats, map[int64]bool, error) {
	var st repoStats
	touched := make(map[int64]bool)

	prs, err := s.source.ListPullRequests(ctx, s.org, repo.Name, since)
	if err != nil {
		return st, nil, err
	}

	for _, p := range prs {
		reviews, err := s.source.ListReviews(ctx, s.org, repo.Name, p.Number)
		if err != nil {
			return st, nil, err
		}

		p.Organization = s.org
		p.RepositoryID = repo.ID
		p.RepositoryName = repo.Name
		if err := s.prs.Save(ctx, p, reviews); err != nil {
			return st, nil, err
		}
		st.pullRequests++

		entries := []activity.Entry{{
			UserID:       p.AuthorID,
			Login:        p.AuthorLogin,
			Organization: s.org,
			Type:         activity.TypeOpenedPR,
			Repository:   repo.Name,
			PRNumber:     p.Number,
			OccurredAt:   p.CreatedAt,
		}}
		touched[p.AuthorID] = true

		for _, r := range reviews {
			if !r.State.Submitted() || r.SubmittedAt.IsZero() {
				continue
			}
			st.reviews++
			touched[r.UserID] = true
			entries = append(entries, activity.Entry{
				UserID:       r.UserID,
				Login:        r.UserLogin,
				Organization: s.org,
				Type:         activity.TypeReviewedPR,
				ReviewState:  string(r.State),
				Repository:   repo.Name,
				PRNumber:     p.Number,
				ReviewID:     r.ID,
				OccurredAt:   r.SubmittedAt,
			})
		}

		if err := s.activity.Record(ctx, entries...); err != nil {
			return st, nil, err
		}
	}
	return st, touched, nil
}

func (s *service) RunScheduled(ctx context.Context) (Result, error) {
	now := s.clock.Now()

	typ := TypeIncremental
	hist, err := s.statuses.Get(ctx, s.org, TypeHistorical)
	if err != nil {
		return Result{}, err
	}
	if hist.LastSyncTime == nil || now.Sub(*hist.LastSyncTime) >= s.opts.HistoricalInterval {
		typ = TypeHistorical
	}

	sched, err := s.statuses.Get(ctx, s.org, TypeScheduled)
	if err != nil {
		return Result{}, err
	}
	if sched.Running(s.opts.LockTimeout, now) {
		return Result{}, inProgress(TypeScheduled)
	}

	sched = sched.Begin(now)
	sched.EventType = string(typ)
	if err := s.statuses.Save(ctx, sched); err != nil {
		return Result{}, err
	}

	res, runErr := s.Run(ctx, typ)
	end := s.clock.Now()
	saveCtx := context.WithoutCancel(ctx)
	if runErr != nil {
		if err := s.statuses.Save(saveCtx, sched.Fail(end, runErr)); err != nil {
			s.log.Error("save failed scheduled status", zap.Error(err))
		}
		return res, runErr
	}
	return res, s.statuses.Save(saveCtx, sched.Complete(end, ""))
}

func (s *service) Trigger(typ Type) error {
	if !s.pending.CompareAndSwap(false, true) {
		return inProgress(typ)
	}

	accepted := s.runner.Submit(func(ctx context.Context) {
		defer s.pending.Store(false)
		if _, err := s.Run(ctx, typ); err != nil {
			s.log.Warn("background sync failed", zap.String("type", string(typ)), zap.Error(err))
		}
	})
	if !accepted {
		s.pending.Store(false)
		return errRunnerClosed
	}
	return nil
}

func (s *service) EnsureFresh(ctx context.Context) (bool, error) {
	list, err := s.statuses.List(ctx, s.org)
	if err != nil {
		return false, err
	}

	now := s.clock.Now()
	fresh := Freshest(s.org, list, s.opts.LockTimeout, now)
	if !NeedsSync(fresh, s.opts.Staleness, s.opts.LockTimeout, now) {
		return false, nil
	}

	err = s.Trigger(TypeIncremental)
	var de *domain.DomainError
	if errors.As(err, &de) && de.Code == domain.ErrorCodeSyncInProgress {
		return false, nil
	}
	return err == nil, err
}

func (s *service) RecordWebhook(ctx context.Context, eventType string) error {
	now := s.clock.Now()
	st, err := s.statuses.Get(ctx, s.org, TypeWebhook)
	if err != nil {
		return err
	}
	st = st.Begin(now).Complete(now, "")
	st.EventType = eventType
	return s.statuses.Save(ctx, st)
}

func (s *service) LastCompleted(ctx context.Context, types ...Type) (*time.Time, error) {
	var last *time.Time
	for _, typ := range types {
		st, err := s.statuses.Get(ctx, s.org, typ)
		if err != nil {
			return nil, err
		}
		if st.LastSyncTime != nil && (last == nil || st.LastSyncTime.After(*last)) {
			last = st.LastSyncTime
		}
	}
	return last, nil
}

func (s *service) Statuses(ctx context.Context) ([]Status, error) {
	return s.statuses.List(ctx, s.org)
}

func (s *service) publish(ctx context.Context, typ string, syncType Type, res Result) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, domain.Event{
		Type: typ,
		Payload: map[string]any{
			"sync_type":     string(syncType),
			"pull_requests": res.PullRequests,
			"reviews":       res.Reviews,
			"failed_repos":  len(res.FailedRepos),
		},
	})
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, &domain.DomainError{
		Code:       domain.ErrorCodeGitHubUnavailable,
		Message:    err.Error(),
		HTTPStatus: http.StatusBadGateway,
	})
}
