package auth

import (
	"context"
	"strings"
)

// Canonical role names. Roles are stored and compared without the
// RolePrefix; Authorities() adds it back for display.
const (
	RoleAdmin    = "ADMIN"
	RoleMedico   = "MEDICO"
	RolePaciente = "PACIENTE"

	RolePrefix = "ROLE_"
)

// KnownRoles lists every role the system assigns.
var KnownRoles = []string{RoleAdmin, RoleMedico, RolePaciente}

// IsKnownRole reports whether role (prefixed or not) is one of KnownRoles.
func IsKnownRole(role string) bool {
	role = NormalizeRole(role)
	for _, r := range KnownRoles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeRole trims, upper-cases and strips the storage prefix from role.
func NormalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	return strings.TrimPrefix(role, RolePrefix)
}

// NormalizeRoles applies NormalizeRole to every entry, dropping blanks and
// duplicates while keeping the original order.
func NormalizeRoles(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = NormalizeRole(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Principal is the authenticated identity attached to a request. It is
// built once per request and never mutated afterwards.
type Principal struct {
	username string
	roles    []string
}

// NewPrincipal builds a Principal with normalized, unprefixed roles.
func NewPrincipal(username string, roles []string) *Principal {
	return &Principal{
		username: strings.TrimSpace(username),
		roles:    NormalizeRoles(roles),
	}
}

func (p *Principal) Username() string {
	if p == nil {
		return ""
	}
	return p.username
}

// Roles returns a copy of the principal's roles.
func (p *Principal) Roles() []string {
	if p == nil || len(p.roles) == 0 {
		return nil
	}
	out := make([]string, len(p.roles))
	copy(out, p.roles)
	return out
}

// Authorities returns the roles with the RolePrefix applied.
func (p *Principal) Authorities() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.roles))
	for _, r := range p.roles {
		out = append(out, RolePrefix+r)
	}
	return out
}

func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	role = NormalizeRole(role)
	for _, r := range p.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p *Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

type principalContextKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal installed by the
// authentication middleware, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// UsernameFromContext returns the authenticated username or "".
func UsernameFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.Username()
}
