package team

import "context"

type Repository interface {
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) error
	AddMembers(ctx context.Context, name string, userIDs []int64) error
	GetWithMembers(ctx context.Context, name string) (Team, error)
}
