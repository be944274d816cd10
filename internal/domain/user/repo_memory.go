package user

import (
	"context"
	"sync"
	"time"

	"github.com/ehr/hospital/internal/platform/apperr"
	"github.com/ehr/hospital/internal/platform/auth"
)

type repoMemory struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]*User
}

// NewRepoMemory returns an in-process Repository. Its role table is the
// fixed auth.KnownRoles set.
func NewRepoMemory() Repository {
	return &repoMemory{users: make(map[string]*User)}
}

func (r *repoMemory) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return apperr.Conflict("username %q already exists", u.Username)
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now().UTC()
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	r.users[u.Username] = &cp
	return nil
}

func (r *repoMemory) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return nil, apperr.NotFound("user", username)
	}
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp, nil
}

func (r *repoMemory) RoleExists(_ context.Context, role string) (bool, error) {
	return auth.IsKnownRole(role), nil
}
