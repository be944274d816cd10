package patient

import "context"

// Repository persists patients. Lookups return errors wrapping
// apperr.ErrNotFound; Create returns one wrapping apperr.ErrConflict for a
// duplicate national id.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByNationalID(ctx context.Context, nationalID string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}
