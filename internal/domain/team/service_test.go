package team_test

import (
	"context"
	"errors"
	"testing"

	"reviewarena/internal/domain"
	"reviewarena/internal/domain/member"
	"reviewarena/internal/domain/team"
)

type uowStub struct{}

func (uowStub) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type eventBusFake struct{ events []domain.Event }

func (e *eventBusFake) Publish(ctx context.Context, ev domain.Event) { e.events = append(e.events, ev) }

type userRepoFake struct {
	byID map[int64]member.User
}

func newUserRepoFake() *userRepoFake { return &userRepoFake{byID: map[int64]member.User{}} }

func (r *userRepoFake) UpsertMany(ctx context.Context, org string, users []member.User) error {
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return nil
}
func (r *userRepoFake) MarkInactiveExcept(ctx context.Context, org string, keepIDs []int64) (int64, error) {
	return 0, nil
}
func (r *userRepoFake) SetActive(ctx context.Context, id int64, active bool) (member.User, error) {
	return member.User{}, nil
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
		if u.Login == login && u.Organization == org {
			return u, nil
		}
	}
	return member.User{}, domain.NotFound("user not found")
}
func (r *userRepoFake) ListByOrg(ctx context.Context, org string, activeOnly bool) ([]member.User, error) {
	return nil, nil
}

type teamRepoFake struct {
	members map[string][]int64
	users   *userRepoFake
}

func newTeamRepoFake(u *userRepoFake) *teamRepoFake {
	return &teamRepoFake{members: map[string][]int64{}, users: u}
}

func (r *teamRepoFake) Exists(ctx context.Context, name string) (bool, error) {
	_, ok := r.members[name]
	return ok, nil
}
func (r *teamRepoFake) Create(ctx context.Context, name string) error {
	if _, ok := r.members[name]; ok {
		return errors.New("exists")
	}
	r.members[name] = nil
	return nil
}
func (r *teamRepoFake) AddMembers(ctx context.Context, name string, userIDs []int64) error {
	r.members[name] = append(r.members[name], userIDs...)
	return nil
}
func (r *teamRepoFake) GetWithMembers(ctx context.Context, name string) (team.Team, error) {
	ids, ok := r.members[name]
	if !ok {
		return team.Team{}, domain.NotFound("team not found")
	}
	t := team.Team{Name: name}
	for _, id := range ids {
		u := r.users.byID[id]
		t.Members = append(t.Members, team.Member{UserID: u.ID, Login: u.Login, Active: u.Active})
	}
	return t, nil
}

func seedUsers() *userRepoFake {
	users := newUserRepoFake()
	users.byID[1] = member.User{ID: 1, Login: "alice", Organization: "acme", Active: true}
	users.byID[2] = member.User{ID: 2, Login: "bob", Organization: "acme", Active: false}
	return users
}

func TestAddTeam_Success(t *testing.T) {
	users := seedUsers()
	teams := newTeamRepoFake(users)
	events := &eventBusFake{}

	svc := team.NewService(uowStub{}, teams, users, events, "acme")

	got, err := svc.AddTeam(context.Background(), team.Team{
		Name: "backend",
		Members: []team.Member{
			{UserID: 1},
			{Login: "bob"},
			{UserID: 1},
		},
	})
	if err != nil {
		t.Fatalf("AddTeam: %v", err)
	}
	if got.Name != "backend" || len(got.Members) != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Members[1].Login != "bob" || got.Members[1].UserID != 2 {
		t.Fatalf("login was not resolved: %+v", got.Members[1])
	}
	if ids := teams.members["backend"]; len(ids) != 2 {
		t.Fatalf("members not stored: %v", ids)
	}
	if len(events.events) != 1 || events.events[0].Type != domain.EventTeamCreated {
		t.Fatalf("expected team.created event, got %+v", events.events)
	}
}

func TestAddTeam_AlreadyExists(t *testing.T) {
	users := seedUsers()
	teams := newTeamRepoFake(users)
	teams.members["backend"] = nil

	svc := team.NewService(uowStub{}, teams, users, &eventBusFake{}, "acme")
	_, err := svc.AddTeam(context.Background(), team.Team{Name: "backend"})
	var de *domain.DomainError
	if err == nil || !errors.As(err, &de) || de.Code != domain.ErrorCodeTeamExists {
		t.Fatalf("expected TEAM_EXISTS, got %v", err)
	}
}

func TestAddTeam_UnknownMember(t *testing.T) {
	users := seedUsers()
	svc := team.NewService(uowStub{}, newTeamRepoFake(users), users, &eventBusFake{}, "acme")

	_, err := svc.AddTeam(context.Background(), team.Team{
		Name:    "backend",
		Members: []team.Member{{Login: "ghost"}},
	})
	var de *domain.DomainError
	if err == nil || !errors.As(err, &de) || de.Code != domain.ErrorCodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestMemberIDs(t *testing.T) {
	users := seedUsers()
	teams := newTeamRepoFake(users)
	teams.members["backend"] = []int64{1, 2}

	svc := team.NewService(uowStub{}, teams, users, &eventBusFake{}, "acme")
	ids, err := svc.MemberIDs(context.Background(), "backend")
	if err != nil {
		t.Fatalf("MemberIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("unexpected ids: %v", ids)
	}

	if _, err := svc.MemberIDs(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for missing team")
	}
}
