package medrecord

import (
	"context"

	"github.com/ehr/hospital/internal/platform/audit"
)

type Audited struct {
	next    Operations
	auditor *audit.Auditor
}

func NewAudited(next Operations, auditor *audit.Auditor) *Audited {
	return &Audited{next: next, auditor: auditor}
}

type page struct {
	items []*MedicalRecord
	total int
}

func (a *Audited) List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	pg, err := audit.Call(ctx, a.auditor, "MedicalRecordService.List(..)", func(ctx context.Context) (page, error) {
		items, total, err := a.next.List(ctx, limit, offset)
		return page{items, total}, err
	}, limit, offset)
	return pg.items, pg.total, err
}

func (a *Audited) GetByPatient(ctx context.Context, patientID int64) (*MedicalRecord, error) {
	return audit.Call(ctx, a.auditor, "MedicalRecordService.GetByPatient(..)", func(ctx context.Context) (*MedicalRecord, error) {
		return a.next.GetByPatient(ctx, patientID)
	}, patientID)
}

func (a *Audited) Create(ctx context.Context, req Request) (*MedicalRecord, error) {
	return audit.Call(ctx, a.auditor, "MedicalRecordService.Create(..)", func(ctx context.Context) (*MedicalRecord, error) {
		return a.next.Create(ctx, req)
	}, req)
}

func (a *Audited) Update(ctx context.Context, id int64, entry string) (*MedicalRecord, error) {
	return audit.Call(ctx, a.auditor, "MedicalRecordService.Update(..)", func(ctx context.Context) (*MedicalRecord, error) {
		return a.next.Update(ctx, id, entry)
	}, id, entry)
}

func (a *Audited) Delete(ctx context.Context, id int64) error {
	return audit.Exec(ctx, a.auditor, "MedicalRecordService.Delete(..)", func(ctx context.Context) error {
		return a.next.Delete(ctx, id)
	}, id)
}
