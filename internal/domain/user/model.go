package user

import (
	"time"

	"github.com/ehr/hospital/internal/platform/audit"
)

// User is an account that can log in. PasswordHash never leaves the service
// layer in responses.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials is the account part of a registration request. Password is
// an audit.Secret so it is masked wherever the request is rendered.
type Credentials struct {
	Username string       `json:"username" validate:"required,max=100"`
	Password audit.Secret `json:"password" validate:"required,min=6,max=72"`
}

// CreateRequest is the body of POST /api/auth/register.
type CreateRequest struct {
	Credentials
	Role string `json:"role" validate:"required"`
}
