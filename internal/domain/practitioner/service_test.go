package practitioner

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ehr/hospital/internal/platform/apperr"
	"github.com/ehr/hospital/internal/platform/audit"
)

func TestService_CRUD(t *testing.T) {
	svc := NewService(NewRepoMemory())
	ctx := context.Background()

	p, err := svc.Create(ctx, Request{Name: "Dr. Silva", Specialty: "Cardiology", License: "CRM12345"}, "dr.silva")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, p.ID, Request{Name: "Dr. Silva", Specialty: "Neurology", License: "CRM12345"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Specialty != "Neurology" || updated.Username != "dr.silva" {
		t.Errorf("unexpected practitioner %+v", updated)
	}

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found after delete", err)
	}
}

func TestService_DuplicateLicense(t *testing.T) {
	svc := NewService(NewRepoMemory())
	ctx := context.Background()
	_, _ = svc.Create(ctx, Request{Name: "A", Specialty: "X", License: "CRM1"}, "")
	second, _ := svc.Create(ctx, Request{Name: "B", Specialty: "X", License: "CRM2"}, "")

	if _, err := svc.Create(ctx, Request{Name: "C", Specialty: "X", License: "crm1"}, ""); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("create err = %v, want conflict", err)
	}
	if _, err := svc.Update(ctx, second.ID, Request{Name: "B", Specialty: "X", License: "CRM1"}); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("update err = %v, want conflict", err)
	}
}

func TestAudited_List(t *testing.T) {
	store := audit.NewMemoryStore()
	svc := NewAudited(NewService(NewRepoMemory()), audit.NewAuditor(store, zerolog.Nop()))

	if _, _, err := svc.List(context.Background(), 20, 0); err != nil {
		t.Fatal(err)
	}
	r := store.All()[0]
	if r.Entity != "Practitioner" || r.Action != "List" || r.Details != "[20, 0]" || r.Actor != audit.Anonymous {
		t.Errorf("unexpected record %+v", r)
	}
}
