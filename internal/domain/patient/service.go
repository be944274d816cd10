package patient

import (
	"context"
	"errors"

	"github.com/ehr/hospital/internal/platform/apperr"
)

// Operations is the patient surface shared by Service and Audited.
type Operations interface {
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Get(ctx context.Context, id int64) (*Patient, error)
	Create(ctx context.Context, req Request, username string) (*Patient, error)
	Update(ctx context.Context, id int64, req Request) (*Patient, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a patient. username, when set, links the patient to its
// login account.
func (s *Service) Create(ctx context.Context, req Request, username string) (*Patient, error) {
	if _, err := s.repo.GetByNationalID(ctx, req.NationalID); err == nil {
		return nil, apperr.Conflict("national id %s already registered", req.NationalID)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	p := req.toPatient()
	p.Username = username
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces name, birth date and clinical history. The national id
// is immutable.
func (s *Service) Update(ctx context.Context, id int64, req Request) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = req.Name
	p.BirthDate = req.BirthDate
	p.ClinicalHistory = req.ClinicalHistory
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
