package appointment

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
	items []*Appointment
	total int
}

func (a *Audited) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	pg, err := audit.Call(ctx, a.auditor, "AppointmentService.List(..)", func(ctx context.Context) (page, error) {
		items, total, err := a.next.List(ctx, limit, offset)
		return page{items, total}, err
	}, limit, offset)
	return pg.items, pg.total, err
}

func (a *Audited) Get(ctx context.Context, id int64) (*Appointment, error) {
	return audit.Call(ctx, a.auditor, "AppointmentService.Get(..)", func(ctx context.Context) (*Appointment, error) {
		return a.next.Get(ctx, id)
	}, id)
}

func (a *Audited) Create(ctx context.Context, req Request) (*Appointment, error) {
	return audit.Call(ctx, a.auditor, "AppointmentService.Create(..)", func(ctx context.Context) (*Appointment, error) {
		return a.next.Create(ctx, req)
	}, req)
}

func (a *Audited) Update(ctx context.Context, id int64, req UpdateRequest) (*Appointment, error) {
	return audit.Call(ctx, a.auditor, "AppointmentService.Update(..)", func(ctx context.Context) (*Appointment, error) {
		return a.next.Update(ctx, id, req)
	}, id, req)
}

func (a *Audited) Delete(ctx context.Context, id int64) error {
	return audit.Exec(ctx, a.auditor, "AppointmentService.Delete(..)", func(ctx context.Context) error {
		return a.next.Delete(ctx, id)
	}, id)
}
