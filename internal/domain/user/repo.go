package user

import "context"

// Repository persists user accounts. GetByUsername returns an error
// wrapping apperr.ErrNotFound when no account matches, and Create one
// wrapping apperr.ErrConflict when the username is taken.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	RoleExists(ctx context.Context, role string) (bool, error)
}
