package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ehr/hospital/internal/platform/apperr"
)

type repoMemory struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]*Appointment
}

func NewRepoMemory() Repository {
	return &repoMemory{items: make(map[int64]*Appointment)}
}

func (r *repoMemory) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *repoMemory) GetByID(_ context.Context, id int64) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	if !ok {
		return nil, apperr.NotFound("appointment", id)
	}
	cp := *a
	return &cp, nil
}

func (r *repoMemory) Update(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.ID]; !ok {
		return apperr.NotFound("appointment", a.ID)
	}
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *repoMemory) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperr.NotFound("appointment", id)
	}
	delete(r.items, id)
	return nil
}

func (r *repoMemory) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*Appointment, 0, len(r.items))
	for _, a := range r.items {
		cp := *a
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].ScheduledAt.Equal(all[j].ScheduledAt) {
			return all[i].ScheduledAt.Before(all[j].ScheduledAt)
		}
		return all[i].ID < all[j].ID
	})

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
