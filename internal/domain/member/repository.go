package member

import "context"

type Repository interface {
	UpsertMany(ctx context.Context, org string, users []User) error
	MarkInactiveExcept(ctx context.Context, org string, keepIDs []int64) (int64, error)
	SetActive(ctx context.Context, id int64, active bool) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByLogin(ctx context.Context, org, login string) (User, error)
	ListByOrg(ctx context.Context, org string, activeOnly bool) ([]User, error)
}
