package challenge

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/metrics"
	"reviewarena/internal/domain/team"
)

type Service interface {
	Create(ctx context.Context, c Challenge) (Challenge, error)
	// List groups challenges by phase with progress computed from live
	// metrics over each challenge window.
	List(ctx context.Context) (Board, error)
}

type service struct {
	repo    Repository
	teams   team.Service
	metrics metrics.Service
	events  domain.EventBus
	clock   domain.Clock
}

func NewService(
	repo Repository,
	teams team.Service,
	metricsSvc metrics.Service,
	events domain.EventBus,
	clock domain.Clock,
) Service {
	return &service{
		repo:    repo,
		teams:   teams,
		metrics: metricsSvc,
		events:  events,
		clock:   clock,
	}
}

func (s *service) Create(ctx context.Context, c Challenge) (Challenge, error) {
	c.Name = strings.TrimSpace(c.Name)
	switch {
	case c.Name == "":
		return Challenge{}, domain.BadRequest("name is required")
	case c.TeamName == "":
		return Challenge{}, domain.BadRequest("team_name is required")
	case !c.Type.Valid():
		return Challenge{}, domain.BadRequest("type must be one of: review_count, approval_rate, response_time")
	case c.Goal <= 0:
		return Challenge{}, domain.BadRequest("goal must be positive")
	case c.StartDate.IsZero() || c.EndDate.IsZero():
		return Challenge{}, domain.BadRequest("start_date and end_date are required")
	case !c.EndDate.After(c.StartDate):
		return Challenge{}, domain.BadRequest("end_date must be after start_date")
	}

	if _, err := s.teams.GetTeam(ctx, c.TeamName); err != nil {
		return Challenge{}, err
	}

	c.ID = uuid.NewString()
	c.IsActive = true
	c.CreatedAt = s.clock.Now()

	if err := s.repo.Create(ctx, c); err != nil {
		return Challenge{}, err
	}

	if s.events != nil {
		s.events.Publish(ctx, domain.Event{
			Type: domain.EventChallengeCreated,
			Payload: map[string]any{
				"challenge_id": c.ID,
				"team_name":    c.TeamName,
				"type":         string(c.Type),
			},
		})
	}
	return c, nil
}

func (s *service) List(ctx context.Context) (Board, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return Board{}, err
	}

	now := s.clock.Now()
	board := Board{
		Active:    []View{},
		Upcoming:  []View{},
		Completed: []View{},
	}

	for _, c := range list {
		v := View{Challenge: c, Phase: PhaseOf(c, now), Progress: Progress{Goal: c.Goal}}

		if v.Phase != PhaseUpcoming {
			v.Progress, err = s.progress(ctx, c, now)
			if err != nil {
				return Board{}, err
			}
		}

		switch v.Phase {
		case PhaseActive:
			board.Active = append(board.Active, v)
		case PhaseUpcoming:
			board.Upcoming = append(board.Upcoming, v)
		default:
			board.Completed = append(board.Completed, v)
		}
	}
	return board, nil
}

func (s *service) progress(ctx context.Context, c Challenge, now time.Time) (Progress, error) {
	ids, err := s.teams.MemberIDs(ctx, c.TeamName)
	var de *domain.DomainError
	if errors.As(err, &de) && de.Code == domain.ErrorCodeNotFound {
		return Progress{Goal: c.Goal}, nil
	}
	if err != nil {
		return Progress{}, err
	}

	end := c.EndDate
	if now.Before(end) {
		end = now
	}
	window := metrics.TimeRange{Value: "challenge", Start: c.StartDate, End: end}

	rows, err := s.metrics.ForUsers(ctx, ids, window)
	if err != nil {
		return Progress{}, err
	}
	return ComputeProgress(c, rows), nil
}
