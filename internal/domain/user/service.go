package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ehr/hospital/internal/platform/apperr"
	"github.com/ehr/hospital/internal/platform/auth"
)

// Operations is the user account surface shared by Service and its
// audited decorator.
type Operations interface {
	CreateUser(ctx context.Context, username, password, role string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	LoadByUsername(ctx context.Context, username string) (*auth.UserDetails, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateUser stores a new account with a bcrypt hash of password and the
// single given role.
func (s *Service) CreateUser(ctx context.Context, username, password, role string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Invalid("username is required")
	}
	role = auth.NormalizeRole(role)
	ok, err := s.repo.RoleExists(ctx, role)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Invalid("role %q does not exist", role)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, apperr.Conflict("username %q already exists", username)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Invalid("%v", err)
	}
	u := &User{Username: username, PasswordHash: hash, Roles: []string{role}}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// LoadByUsername resolves the current roles of username for request
// authentication. Unknown users yield auth.ErrPrincipalNotFound.
func (s *Service) LoadByUsername(ctx context.Context, username string) (*auth.UserDetails, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", auth.ErrPrincipalNotFound, username)
	}
	if err != nil {
		return nil, err
	}
	return &auth.UserDetails{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Roles:        auth.NormalizeRoles(u.Roles),
	}, nil
}

// EnsureAdmin creates an ADMIN account unless username already exists.
// It runs at startup, outside any request, and is not audited.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}
	if _, err := s.CreateUser(ctx, username, password, auth.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
