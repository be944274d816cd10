package account

import (
	"context"

	"github.com/ehr/hospital/internal/domain/patient"
	"github.com/ehr/hospital/internal/domain/practitioner"
	"github.com/ehr/hospital/internal/platform/db"
)

// Transactional runs registrations in one transaction. Wrapped around
// Audited, the audit append joins the same transaction, so a failed append
// also rolls back the account and the entity.
type Transactional struct {
	next Operations
	tx   db.TxRunner
}

func NewTransactional(next Operations, tx db.TxRunner) *Transactional {
	return &Transactional{next: next, tx: tx}
}

func (t *Transactional) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	return t.next.Login(ctx, username, password)
}

func (t *Transactional) RegisterPatient(ctx context.Context, req PatientRegistration) (*patient.Patient, error) {
	var out *patient.Patient
	err := t.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = t.next.RegisterPatient(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Transactional) RegisterPractitioner(ctx context.Context, req PractitionerRegistration) (*practitioner.Practitioner, error) {
	var out *practitioner.Practitioner
	err := t.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = t.next.RegisterPractitioner(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
