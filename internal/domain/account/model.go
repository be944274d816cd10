package account

import (
	"github.com/ehr/hospital/internal/domain/patient"
	"github.com/ehr/hospital/internal/domain/practitioner"
	"github.com/ehr/hospital/internal/domain/user"
	"github.com/ehr/hospital/internal/platform/audit"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string       `json:"username" validate:"required"`
	Password audit.Secret `json:"password" validate:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresIn int      `json:"expires_in"`
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
}

// PatientRegistration creates a PACIENTE account and its patient.
type PatientRegistration struct {
	Patient patient.Request  `json:"patient"`
	Account user.Credentials `json:"account"`
}

// PractitionerRegistration creates a MEDICO account and its practitioner.
type PractitionerRegistration struct {
	Practitioner practitioner.Request `json:"practitioner"`
	Account      user.Credentials     `json:"account"`
}
