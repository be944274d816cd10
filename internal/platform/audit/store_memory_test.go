package audit

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryStore_AppendAndList(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	actors := []string{"bob", "Alice", "bob", "ANONYMOUS", "BOB"}
	for _, a := range actors {
		if err := s.Append(ctx, &Record{Actor: a, Action: "Get"}); err != nil {
			t.Fatal(err)
		}
	}

	all, total, err := s.List(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(all) != 5 {
		t.Fatalf("total=%d len=%d, want 5", total, len(all))
	}
	for i, r := range all {
		if r.ID != int64(i+1) {
			t.Errorf("record %d has id %d", i, r.ID)
		}
	}

	page, total, _ := s.List(ctx, 2, 2)
	if total != 5 || len(page) != 2 || page[0].ID != 3 {
		t.Errorf("page = %+v total=%d", page, total)
	}

	byBob, total, _ := s.ListByActor(ctx, "bob", 0, 0)
	if total != 2 || len(byBob) != 2 {
		t.Errorf("bob records = %d (total %d), want 2", len(byBob), total)
	}
	for _, r := range byBob {
		if r.Actor != "bob" {
			t.Errorf("ListByActor(bob) returned record of %q", r.Actor)
		}
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Append(ctx, &Record{Actor: "bob", Details: "[1]"})

	got := s.All()
	got[0].Details = "tampered"
	if s.All()[0].Details != "[1]" {
		t.Error("stored record was mutated through a returned copy")
	}
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(ctx, &Record{Actor: fmt.Sprintf("user-%d", i%5)})
		}(i)
	}
	wg.Wait()

	all := s.All()
	if len(all) != 50 {
		t.Fatalf("expected 50 records, got %d", len(all))
	}
	seen := make(map[int64]bool)
	for _, r := range all {
		if seen[r.ID] {
			t.Fatalf("duplicate id %d", r.ID)
		}
		seen[r.ID] = true
	}
}
