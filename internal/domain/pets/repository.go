package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	FindOne(ctx context.Context, f Filter) (Pet, bool, error)
	FindMany(ctx context.Context, f Filter) ([]Pet, error)
}
