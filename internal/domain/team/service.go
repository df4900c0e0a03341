package team

import (
	"context"
	"net/http"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/member"
)

type Service interface {
	AddTeam(ctx context.Context, team Team) (Team, error)
	GetTeam(ctx context.Context, name string) (Team, error)
	MemberIDs(ctx context.Context, name string) ([]int64, error)
}

type service struct {
	uow    domain.UnitOfWork
	teams  Repository
	users  member.Repository
	events domain.EventBus
	org    string
}

func NewService(
	uow domain.UnitOfWork,
	teams Repository,
	users member.Repository,
	events domain.EventBus,
	org string,
) Service {
	return &service{
		uow:    uow,
		teams:  teams,
		users:  users,
		events: events,
		org:    org,
	}
}

// AddTeam creates a team out of already synced organization members. Members
// are referenced by user ID; a login is resolved when the ID is missing.
func (s *service) AddTeam(ctx context.Context, t Team) (Team, error) {
	var result Team

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.teams.Exists(ctx, t.Name)
		if err != nil {
			return err
		}
		if exists {
			return &domain.DomainError{
				Code:       domain.ErrorCodeTeamExists,
				Message:    "team_name already exists",
				HTTPStatus: http.StatusBadRequest,
			}
		}

		if err := s.teams.Create(ctx, t.Name); err != nil {
			return err
		}

		seen := make(map[int64]bool, len(t.Members))
		ids := make([]int64, 0, len(t.Members))
		members := make([]Member, 0, len(t.Members))
		for _, m := range t.Members {
			var (
				u   member.User
				err error
			)
			if m.UserID != 0 {
				u, err = s.users.GetByID(ctx, m.UserID)
			} else {
				u, err = s.users.GetByLogin(ctx, s.org, m.Login)
			}
			if err != nil {
				return err
			}
			if seen[u.ID] {
				continue
			}
			seen[u.ID] = true
			ids = append(ids, u.ID)
			members = append(members, Member{UserID: u.ID, Login: u.Login, Active: u.Active})
		}

		if err := s.teams.AddMembers(ctx, t.Name, ids); err != nil {
			return err
		}

		result = Team{Name: t.Name, Members: members}

		if s.events != nil {
			s.events.Publish(ctx, domain.Event{
				Type: domain.EventTeamCreated,
				Payload: map[string]any{
					"team_name": t.Name,
					"members":   len(members),
				},
			})
		}
		return nil
	})

	return result, err
}

func (s *service) GetTeam(ctx context.Context, name string) (Team, error) {
	return s.teams.GetWithMembers(ctx, name)
}

func (s *service) MemberIDs(ctx context.Context, name string) ([]int64, error) {
	t, err := s.teams.GetWithMembers(ctx, name)
	if err != nil {
		return nil, err
	}
	return t.MemberIDs(), nil
}
