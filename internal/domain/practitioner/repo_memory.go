package practitioner

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ehr/hospital/internal/platform/apperr"
)

type repoMemory struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]*Practitioner
}

func NewRepoMemory() Repository {
	return &repoMemory{items: make(map[int64]*Practitioner)}
}

func (r *repoMemory) licenseTaken(license string, except int64) bool {
	for id, p := range r.items {
		if id != except && strings.EqualFold(p.License, license) {
			return true
		}
	}
	return false
}

func (r *repoMemory) Create(_ context.Context, p *Practitioner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.licenseTaken(p.License, 0) {
		return apperr.Conflict("license %s already registered", p.License)
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *repoMemory) GetByID(_ context.Context, id int64) (*Practitioner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, apperr.NotFound("practitioner", id)
	}
	cp := *p
	return &cp, nil
}

func (r *repoMemory) Update(_ context.Context, p *Practitioner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[p.ID]
	if !ok {
		return apperr.NotFound("practitioner", p.ID)
	}
	if r.licenseTaken(p.License, p.ID) {
		return apperr.Conflict("license %s already registered", p.License)
	}
	existing.Name = p.Name
	existing.Specialty = p.Specialty
	existing.License = p.License
	existing.UpdatedAt = time.Now().UTC()
	*p = *existing
	return nil
}

func (r *repoMemory) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperr.NotFound("practitioner", id)
	}
	delete(r.items, id)
	return nil
}

func (r *repoMemory) List(_ context.Context, limit, offset int) ([]*Practitioner, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*Practitioner, 0, len(r.items))
	for _, p := range r.items {
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
