package appointment

import (
	"context"
	"fmt"

	"github.com/ehr/hospital/internal/domain/patient"
	"github.com/ehr/hospital/internal/domain/practitioner"
	"github.com/ehr/hospital/internal/platform/apperr"
)

// PatientLookup and PractitionerLookup check references. They are wired
// to the undecorated services so reference checks are not audited twice.
type PatientLookup interface {
	Get(ctx context.Context, id int64) (*patient.Patient, error)
}

type PractitionerLookup interface {
	Get(ctx context.Context, id int64) (*practitioner.Practitioner, error)
}

type Operations interface {
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	Get(ctx context.Context, id int64) (*Appointment, error)
	Create(ctx context.Context, req Request) (*Appointment, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Appointment, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo          Repository
	patients      PatientLookup
	practitioners PractitionerLookup
}

func NewService(repo Repository, patients PatientLookup, practitioners PractitionerLookup) *Service {
	return &Service{repo: repo, patients: patients, practitioners: practitioners}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) checkRefs(ctx context.Context, patientID, practitionerID int64) error {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return err
	}
	if _, err := s.practitioners.Get(ctx, practitionerID); err != nil {
		return err
	}
	return nil
}

// Create books an appointment. Status defaults to SCHEDULED.
func (s *Service) Create(ctx context.Context, req Request) (*Appointment, error) {
	if err := s.checkRefs(ctx, req.PatientID, req.PractitionerID); err != nil {
		return nil, err
	}
	a := &Appointment{
		PatientID:      req.PatientID,
		PractitionerID: req.PractitionerID,
		ScheduledAt:    req.ScheduledAt.UTC(),
		Status:         normalizeStatus(req.Status),
		Notes:          req.Notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update rewrites an appointment. A COMPLETED appointment is final and
// yields apperr.ErrNotAllowed.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCompleted {
		return nil, fmt.Errorf("%w: appointment %d is already completed", apperr.ErrNotAllowed, id)
	}
	if err := s.checkRefs(ctx, req.PatientID, req.PractitionerID); err != nil {
		return nil, err
	}
	a.PatientID = req.PatientID
	a.PractitionerID = req.PractitionerID
	a.ScheduledAt = req.ScheduledAt.UTC()
	a.Status = normalizeStatus(req.Status)
	a.Notes = req.Notes
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
