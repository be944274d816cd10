package medrecord

import (
	"context"
	"strings"

	"github.com/ehr/hospital/internal/domain/patient"
	"github.com/ehr/hospital/internal/platform/apperr"
)

type PatientLookup interface {
	Get(ctx context.Context, id int64) (*patient.Patient, error)
}

type Operations interface {
	List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error)
	GetByPatient(ctx context.Context, patientID int64) (*MedicalRecord, error)
	Create(ctx context.Context, req Request) (*MedicalRecord, error)
	Update(ctx context.Context, id int64, entry string) (*MedicalRecord, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo     Repository
	patients PatientLookup
}

func NewService(repo Repository, patients PatientLookup) *Service {
	return &Service{repo: repo, patients: patients}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) GetByPatient(ctx context.Context, patientID int64) (*MedicalRecord, error) {
	return s.repo.GetByPatientID(ctx, patientID)
}

// Create opens the record of a patient. Each patient has at most one.
func (s *Service) Create(ctx context.Context, req Request) (*MedicalRecord, error) {
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByPatientID(ctx, req.PatientID); err == nil {
		return nil, apperr.Conflict("medical record already exists for patient %d", req.PatientID)
	}
	rec := &MedicalRecord{PatientID: req.PatientID, Entries: req.Entries}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update appends entry to the record on a new line. Existing entries are
// never rewritten.
func (s *Service) Update(ctx context.Context, id int64, entry string) (*MedicalRecord, error) {
	if strings.TrimSpace(entry) == "" {
		return nil, apperr.Invalid("entries is required")
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Entries = rec.Entries + "\n" + entry
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
