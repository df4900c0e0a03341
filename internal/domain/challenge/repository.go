package challenge

import "context"

type Repository interface {
	Create(ctx context.Context, c Challenge) error
	// List returns every challenge ordered by start date.
	List(ctx context.Context) ([]Challenge, error)
}
