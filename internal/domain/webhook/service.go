package webhook

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/activity"
	"reviewarena/internal/domain/ghsync"
	"reviewarena/internal/domain/pr"
)

type Service interface {
	Handle(ctx context.Context, e Event) (Outcome, error)
}

type service struct {
	org       string
	prs       pr.Service
	activity  activity.Service
	sync      ghsync.Service
	events    domain.EventBus
	clock     domain.Clock
	log       *zap.Logger
	pushAfter time.Duration
}

// NewService builds the webhook handler. pushAfter is how old the last
// incremental or scheduled sync must be before a push to the default branch
// triggers a new one.
func NewService(
	org string,
	prs pr.Service,
	activitySvc activity.Service,
	syncSvc ghsync.Service,
	events domain.EventBus,
	clock domain.Clock,
	log *zap.Logger,
	pushAfter time.Duration,
) Service {
	return &service{
		org:       org,
		prs:       prs,
		activity:  activitySvc,
		sync:      syncSvc,
		events:    events,
		clock:     clock,
		log:       log,
		pushAfter: pushAfter,
	}
}

func (s *service) Handle(ctx context.Context, e Event) (Outcome, error) {
	out := Outcome{Event: e.Name, Action: e.Action}

	if e.Organization != "" && !strings.EqualFold(e.Organization, s.org) {
		s.log.Info("webhook from foreign organization ignored",
			zap.String("event", e.Name), zap.String("organization", e.Organization))
		return out, nil
	}

	var err error
	switch e.Name {
	case EventPullRequest:
		err = s.pullRequest(ctx, e, &out)
	case EventPullRequestReview:
		err = s.review(ctx, e, &out)
	case EventPush:
		err = s.push(ctx, e, &out)
	default:
		s.log.Debug("webhook ignored", zap.String("event", e.Name), zap.String("delivery", e.DeliveryID))
	}
	return out, err
}

func (s *service) pullRequest(ctx context.Context, e Event, out *Outcome) error {
	var typ activity.Type
	switch e.Action {
	case "opened":
		typ = activity.TypePROpened
	case "closed":
		typ = activity.TypePRClosed
	case "reopened":
		typ = activity.TypePRReopened
	default:
		return nil
	}
	if e.PullRequest == nil {
		return domain.BadRequest("pull_request payload is missing")
	}

	p := *e.PullRequest
	p.Organization = s.org
	if err := s.prs.Save(ctx, p, nil); err != nil {
		return err
	}

	occurred := p.UpdatedAt
	if typ == activity.TypePROpened {
		occurred = p.CreatedAt
	}
	err := s.activity.Record(ctx, activity.Entry{
		UserID:       p.AuthorID,
		Login:        p.AuthorLogin,
		Organization: s.org,
		Type:         typ,
		Repository:   p.RepositoryName,
		PRNumber:     p.Number,
		OccurredAt:   occurred,
	})
	if err != nil {
		return err
	}

	if err := s.sync.RecordWebhook(ctx, EventPullRequest); err != nil {
		return err
	}
	out.Processed = true
	s.publish(ctx, domain.EventPullRequestReceived, map[string]any{
		"action":     e.Action,
		"repository": p.RepositoryName,
		"number":     p.Number,
	})

	busy, err := s.activity.IsHighActivity(ctx, s.org, p.RepositoryName)
	if err != nil {
		return err
	}
	if busy {
		out.SyncTriggered = s.trigger(p.RepositoryName)
	}
	return nil
}

func (s *service) review(ctx context.Context, e Event, out *Outcome) error {
	if e.Action != "submitted" {
		return nil
	}
	if e.PullRequest == nil || e.Review == nil {
		return domain.BadRequest("pull_request_review payload is missing")
	}

	p := *e.PullRequest
	p.Organization = s.org
	r := *e.Review
	if err := s.prs.Save(ctx, p, []pr.Review{r}); err != nil {
		return err
	}

	if r.State.Submitted() {
		err := s.activity.Record(ctx, activity.Entry{
			UserID:       r.UserID,
			Login:        r.UserLogin,
			Organization: s.org,
			Type:         activity.TypeReviewedPR,
			ReviewState:  string(r.State),
			Repository:   p.RepositoryName,
			PRNumber:     p.Number,
			ReviewID:     r.ID,
			OccurredAt:   r.SubmittedAt,
		})
		if err != nil {
			return err
		}
	}

	if err := s.sync.RecordWebhook(ctx, EventPullRequestReview); err != nil {
		return err
	}
	out.Processed = true
	s.publish(ctx, domain.EventReviewSubmitted, map[string]any{
		"user_id":    r.UserID,
		"repository": p.RepositoryName,
		"number":     p.Number,
		"state":      string(r.State),
	})

	out.SyncTriggered = s.trigger(p.RepositoryName)
	return nil
}

func (s *service) push(ctx context.Context, e Event, out *Outcome) error {
	if e.DefaultBranch == "" || e.Ref != "refs/heads/"+e.DefaultBranch {
		return nil
	}

	if err := s.sync.RecordWebhook(ctx, EventPush); err != nil {
		return err
	}
	out.Processed = true

	last, err := s.sync.LastCompleted(ctx, ghsync.TypeIncremental, ghsync.TypeScheduled)
	if err != nil {
		return err
	}
	if last == nil || s.clock.Now().Sub(*last) > s.pushAfter {
		out.SyncTriggered = s.trigger(e.Repository)
	}
	return nil
}

// trigger starts a background incremental sync. A sync that is already
// running covers the delivery, so SYNC_IN_PROGRESS is not an error here.
func (s *service) trigger(repo string) bool {
	err := s.sync.Trigger(ghsync.TypeIncremental)
	if err == nil {
		s.log.Info("incremental sync triggered by webhook", zap.String("repo", repo))
		return true
	}

	var de *domain.DomainError
	if !errors.As(err, &de) || de.Code != domain.ErrorCodeSyncInProgress {
		s.log.Warn("trigger sync from webhook", zap.String("repo", repo), zap.Error(err))
	}
	return false
}

func (s *service) publish(ctx context.Context, typ string, payload map[string]any) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, domain.Event{Type: typ, Payload: payload})
}
