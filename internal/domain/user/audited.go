package user

import (
	"context"

	"github.com/ehr/hospital/internal/platform/audit"
	"github.com/ehr/hospital/internal/platform/auth"
)

// Audited records every successful user operation. The password argument
// of CreateUser is masked by the audit renderer.
type Audited struct {
	next    Operations
	auditor *audit.Auditor
}

func NewAudited(next Operations, auditor *audit.Auditor) *Audited {
	return &Audited{next: next, auditor: auditor}
}

func (a *Audited) CreateUser(ctx context.Context, username, password, role string) (*User, error) {
	return audit.Call(ctx, a.auditor, "UserService.CreateUser(..)", func(ctx context.Context) (*User, error) {
		return a.next.CreateUser(ctx, username, password, role)
	}, username, password, role)
}

func (a *Audited) FindByUsername(ctx context.Context, username string) (*User, error) {
	return audit.Call(ctx, a.auditor, "UserService.FindByUsername(..)", func(ctx context.Context) (*User, error) {
		return a.next.FindByUsername(ctx, username)
	}, username)
}

// LoadByUsername runs on every authenticated request and is excluded from
// the audit log.
func (a *Audited) LoadByUsername(ctx context.Context, username string) (*auth.UserDetails, error) {
	return audit.Call(ctx, a.auditor, audit.IdentityLookup, func(ctx context.Context) (*auth.UserDetails, error) {
		return a.next.LoadByUsername(ctx, username)
	}, username)
}
