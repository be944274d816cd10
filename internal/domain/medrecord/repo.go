package medrecord

import "context"

// Repository persists medical records. Create returns an error wrapping
// apperr.ErrConflict when the patient already has a record.
type Repository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id int64) (*MedicalRecord, error)
	GetByPatientID(ctx context.Context, patientID int64) (*MedicalRecord, error)
	Update(ctx context.Context, r *MedicalRecord) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error)
}
