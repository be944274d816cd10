package practitioner

import "context"

type Operations interface {
	List(ctx context.Context, limit, offset int) ([]*Practitioner, int, error)
	Get(ctx context.Context, id int64) (*Practitioner, error)
	Create(ctx context.Context, req Request, username string) (*Practitioner, error)
	Update(ctx context.Context, id int64, req Request) (*Practitioner, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Practitioner, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id int64) (*Practitioner, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a practitioner; the repository rejects a duplicate
// license with a conflict.
func (s *Service) Create(ctx context.Context, req Request, username string) (*Practitioner, error) {
	p := &Practitioner{Name: req.Name, Specialty: req.Specialty, License: req.License, Username: username}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, req Request) (*Practitioner, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name, p.Specialty, p.License = req.Name, req.Specialty, req.License
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
