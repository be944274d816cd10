package patient

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ehr/hospital/internal/platform/apperr"
)

type repoMemory struct {
	mu       sync.RWMutex
	nextID   int64
	patients map[int64]*Patient
}

func NewRepoMemory() Repository {
	return &repoMemory{patients: make(map[int64]*Patient)}
}

func (r *repoMemory) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.patients {
		if existing.NationalID == p.NationalID {
			return apperr.Conflict("national id %s already registered", p.NationalID)
		}
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *repoMemory) GetByID(_ context.Context, id int64) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient", id)
	}
	cp := *p
	return &cp, nil
}

func (r *repoMemory) GetByNationalID(_ context.Context, nationalID string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if p.NationalID == nationalID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("patient", nationalID)
}

func (r *repoMemory) Update(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.patients[p.ID]
	if !ok {
		return apperr.NotFound("patient", p.ID)
	}
	existing.Name = p.Name
	existing.BirthDate = p.BirthDate
	existing.ClinicalHistory = p.ClinicalHistory
	existing.UpdatedAt = time.Now().UTC()
	*p = *existing
	return nil
}

func (r *repoMemory) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return apperr.NotFound("patient", id)
	}
	delete(r.patients, id)
	return nil
}

func (r *repoMemory) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*Patient, 0, len(r.patients))
	for _, p := range r.patients {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}
