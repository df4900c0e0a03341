package member

import (
	"context"

	"reviewarena/internal/domain"
)

type Service interface {
	// Replace stores the current member list of org and deactivates everyone
	// who is no longer part of it.
	Replace(ctx context.Context, org string, users []User) (deactivated int64, err error)
	SetActive(ctx context.Context, id int64, active bool) (User, error)
	Get(ctx context.Context, id int64) (User, error)
	List(ctx context.Context, org string, activeOnly bool) ([]User, error)
}

type service struct {
	uow    domain.UnitOfWork
	users  Repository
	events domain.EventBus
}

func NewService(uow domain.UnitOfWork, users Repository, events domain.EventBus) Service {
	return &service{
		uow:    uow,
		users:  users,
		events: events,
	}
}

func (s *service) Replace(ctx context.Context, org string, users []User) (int64, error) {
	var deactivated int64

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		ids := make([]int64, 0, len(users))
		for i := range users {
			users[i].Organization = org
			users[i].Active = true
			if users[i].Name == "" {
				users[i].Name = users[i].Login
			}
			ids = append(ids, users[i].ID)
		}

		if err := s.users.UpsertMany(ctx, org, users); err != nil {
			return err
		}

		n, err := s.users.MarkInactiveExcept(ctx, org, ids)
		if err != nil {
			return err
		}
		deactivated = n
		return nil
	})

	return deactivated, err
}

func (s *service) SetActive(ctx context.Context, id int64, active bool) (User, error) {
	var res User

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.SetActive(ctx, id, active)
		if err != nil {
			return err
		}
		res = u

		if s.events != nil {
			s.events.Publish(ctx, domain.Event{
				Type: domain.EventMemberSetActive,
				Payload: map[string]any{
					"user_id": u.ID,
					"login":   u.Login,
					"active":  u.Active,
				},
			})
		}
		return nil
	})

	return res, err
}

func (s *service) Get(ctx context.Context, id int64) (User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, org string, activeOnly bool) ([]User, error) {
	return s.users.ListByOrg(ctx, org, activeOnly)
}
