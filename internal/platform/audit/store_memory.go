package audit

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used by the memory storage mode and
// tests.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	cp := *r
	s.records = append(s.records, &cp)
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]*Record, int, error) {
	return s.filter(func(*Record) bool { return true }, limit, offset), s.count(func(*Record) bool { return true }), nil
}

func (s *MemoryStore) ListByActor(_ context.Context, actor string, limit, offset int) ([]*Record, int, error) {
	match := func(r *Record) bool { return r.Actor == actor }
	return s.filter(match, limit, offset), s.count(match), nil
}

// All returns every stored record in append order.
func (s *MemoryStore) All() []*Record {
	return s.filter(func(*Record) bool { return true }, 0, 0)
}

func (s *MemoryStore) filter(match func(*Record) bool, limit, offset int) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	skipped := 0
	for _, r := range s.records {
		if !match(r) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		cp := *r
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (s *MemoryStore) count(match func(*Record) bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.records {
		if match(r) {
			n++
		}
	}
	return n
}
