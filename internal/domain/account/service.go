package account

import (
	"context"
	"errors"

	"github.com/ehr/hospital/internal/domain/patient"
	"github.com/ehr/hospital/internal/domain/practitioner"
	"github.com/ehr/hospital/internal/domain/user"
	"github.com/ehr/hospital/internal/platform/apperr"
	"github.com/ehr/hospital/internal/platform/auth"
)

type Operations interface {
	Login(ctx context.Context, username, password string) (*TokenResponse, error)
	RegisterPatient(ctx context.Context, req PatientRegistration) (*patient.Patient, error)
	RegisterPractitioner(ctx context.Context, req PractitionerRegistration) (*practitioner.Practitioner, error)
}

// Service issues tokens and registers people together with their login
// accounts. It composes the undecorated user, patient and practitioner
// services; the account-level call is the one that gets audited.
type Service struct {
	users         user.Operations
	patients      patient.Operations
	practitioners practitioner.Operations
	codec         *auth.TokenCodec
}

func NewService(users user.Operations, patients patient.Operations, practitioners practitioner.Operations, codec *auth.TokenCodec) *Service {
	return &Service{users: users, patients: patients, practitioners: practitioners, codec: codec}
}

// Login checks the password against the stored bcrypt hash and issues a
// token carrying the stored roles. Unknown users and wrong passwords both
// yield apperr.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	details, err := s.users.LoadByUsername(ctx, username)
	if errors.Is(err, auth.ErrPrincipalNotFound) {
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(details.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}

	p := auth.NewPrincipal(details.Username, details.Roles)
	token, err := s.codec.Issue(p)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(auth.TokenTTL.Seconds()),
		Username:  p.Username(),
		Roles:     p.Roles(),
	}, nil
}

// RegisterPatient creates a PACIENTE account and the linked patient. Run it
// inside a transaction (see Transactional) so a failure leaves neither.
func (s *Service) RegisterPatient(ctx context.Context, req PatientRegistration) (*patient.Patient, error) {
	u, err := s.users.CreateUser(ctx, req.Account.Username, req.Account.Password.Reveal(), auth.RolePaciente)
	if err != nil {
		return nil, err
	}
	return s.patients.Create(ctx, req.Patient, u.Username)
}

// RegisterPractitioner creates a MEDICO account and the linked
// practitioner.
func (s *Service) RegisterPractitioner(ctx context.Context, req PractitionerRegistration) (*practitioner.Practitioner, error) {
	u, err := s.users.CreateUser(ctx, req.Account.Username, req.Account.Password.Reveal(), auth.RoleMedico)
	if err != nil {
		return nil, err
	}
	return s.practitioners.Create(ctx, req.Practitioner, u.Username)
}
