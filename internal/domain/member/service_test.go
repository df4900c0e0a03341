package member_test

import (
	"context"
	"errors"
	"testing"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/member"
)

type uowStub struct{}

func (uowStub) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type eventBusFake struct{ events []domain.Event }

func (e *eventBusFake) Publish(ctx context.Context, ev domain.Event) { e.events = append(e.events, ev) }

type userRepoFake struct{ byID map[int64]member.User }

func newUserRepoFake() *userRepoFake { return &userRepoFake{byID: map[int64]member.User{}} }

func (r *userRepoFake) UpsertMany(ctx context.Context, org string, users []member.User) error {
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return nil
}
func (r *userRepoFake) MarkInactiveExcept(ctx context.Context, org string, keepIDs []int64) (int64, error) {
	keep := map[int64]bool{}
	for _, id := range keepIDs {
		keep[id] = true
	}
	var n int64
	for id, u := range r.byID {
		if u.Organization == org && u.Active && !keep[id] {
			u.Active = false
			r.byID[id] = u
			n++
		}
	}
	return n, nil
}
func (r *userRepoFake) SetActive(ctx context.Context, id int64, active bool) (member.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return member.User{}, domain.NotFound("user not found")
	}
	u.Active = active
	r.byID[id] = u
	return u, nil
}
func (r *userRepoFake) GetByID(ctx context.Context, id int64) (member.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return member.User{}, domain.NotFound("user not found")
	}
	return u, nil
}
func (r *userRepoFake) GetByLogin(ctx context.Context, org, login string) (member.User, error) {
	for _, u := range r.byID {
		if u.Login == login {
			return u, nil
		}
	}
	return member.User{}, domain.NotFound("user not found")
}
func (r *userRepoFake) ListByOrg(ctx context.Context, org string, activeOnly bool) ([]member.User, error) {
	var res []member.User
	for _, u := range r.byID {
		if u.Organization == org && (!activeOnly || u.Active) {
			res = append(res, u)
		}
	}
	return res, nil
}

func TestSetActive(t *testing.T) {
	repo := newUserRepoFake()
	events := &eventBusFake{}
	repo.byID[1] = member.User{ID: 1, Login: "alice", Organization: "acme", Active: false}

	svc := member.NewService(uowStub{}, repo, events)

	u, err := svc.SetActive(context.Background(), 1, true)
	if err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if !u.Active {
		t.Fatalf("user should be active")
	}
	if len(events.events) != 1 || events.events[0].Type != domain.EventMemberSetActive {
		t.Fatalf("expected member.set_active event, got %+v", events.events)
	}
}

func TestSetActive_NotFound(t *testing.T) {
	svc := member.NewService(uowStub{}, newUserRepoFake(), &eventBusFake{})

	_, err := svc.SetActive(context.Background(), 42, true)
	var de *domain.DomainError
	if err == nil || !errors.As(err, &de) || de.Code != domain.ErrorCodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestReplace_DeactivatesDepartedMembers(t *testing.T) {
	repo := newUserRepoFake()
	repo.byID[1] = member.User{ID: 1, Login: "alice", Organization: "acme", Active: true}
	repo.byID[2] = member.User{ID: 2, Login: "bob", Organization: "acme", Active: true}
	repo.byID[9] = member.User{ID: 9, Login: "zed", Organization: "other", Active: true}

	svc := member.NewService(uowStub{}, repo, nil)

	n, err := svc.Replace(context.Background(), "acme", []member.User{
		{ID: 1, Login: "alice"},
		{ID: 3, Login: "carol", Name: "Carol"},
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deactivated, got %d", n)
	}
	if repo.byID[2].Active {
		t.Fatalf("bob should be inactive")
	}
	if !repo.byID[9].Active {
		t.Fatalf("members of other orgs must not be touched")
	}
	if got := repo.byID[1].Name; got != "alice" {
		t.Fatalf("name should fall back to login, got %q", got)
	}
	if !repo.byID[3].Active || repo.byID[3].Organization != "acme" {
		t.Fatalf("carol should be stored as active acme member: %+v", repo.byID[3])
	}
}
