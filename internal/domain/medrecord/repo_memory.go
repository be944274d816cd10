package medrecord

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
	items  map[int64]*MedicalRecord
}

func NewRepoMemory() Repository {
	return &repoMemory{items: make(map[int64]*MedicalRecord)}
}

func (r *repoMemory) Create(_ context.Context, rec *MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.PatientID == rec.PatientID {
			return apperr.Conflict("medical record already exists for patient %d", rec.PatientID)
		}
	}
	r.nextID++
	rec.ID = r.nextID
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	cp := *rec
	r.items[rec.ID] = &cp
	return nil
}

func (r *repoMemory) GetByID(_ context.Context, id int64) (*MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.items[id]
	if !ok {
		return nil, apperr.NotFound("medical record", id)
	}
	cp := *rec
	return &cp, nil
}

func (r *repoMemory) GetByPatientID(_ context.Context, patientID int64) (*MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.items {
		if rec.PatientID == patientID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("medical record", patientID)
}

func (r *repoMemory) Update(_ context.Context, rec *MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[rec.ID]
	if !ok {
		return apperr.NotFound("medical record", rec.ID)
	}
	existing.Entries = rec.Entries
	existing.UpdatedAt = time.Now().UTC()
	*rec = *existing
	return nil
}

func (r *repoMemory) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperr.NotFound("medical record", id)
	}
	delete(r.items, id)
	return nil
}

func (r *repoMemory) List(_ context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*MedicalRecord, 0, len(r.items))
	for _, rec := range r.items {
		cp := *rec
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
