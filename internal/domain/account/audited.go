package account

import (
	"context"

	"github.com/ehr/hospital/internal/domain/patient"
	"github.com/ehr/hospital/internal/domain/practitioner"
	"github.com/ehr/hospital/internal/platform/audit"
)

// Audited records logins and registrations. Login runs before any principal
// exists, so its actor is ANONYMOUS and its password argument is masked.
type Audited struct {
	next    Operations
	auditor *audit.Auditor
}

func NewAudited(next Operations, auditor *audit.Auditor) *Audited {
	return &Audited{next: next, auditor: auditor}
}

func (a *Audited) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	return audit.Call(ctx, a.auditor, "AccountService.Login(..)", func(ctx context.Context) (*TokenResponse, error) {
		return a.next.Login(ctx, username, password)
	}, username, password)
}

func (a *Audited) RegisterPatient(ctx context.Context, req PatientRegistration) (*patient.Patient, error) {
	return audit.Call(ctx, a.auditor, "AccountService.RegisterPatient(..)", func(ctx context.Context) (*patient.Patient, error) {
		return a.next.RegisterPatient(ctx, req)
	}, req)
}

func (a *Audited) RegisterPractitioner(ctx context.Context, req PractitionerRegistration) (*practitioner.Practitioner, error) {
	return audit.Call(ctx, a.auditor, "AccountService.RegisterPractitioner(..)", func(ctx context.Context) (*practitioner.Practitioner, error) {
		return a.next.RegisterPractitioner(ctx, req)
	}, req)
}
