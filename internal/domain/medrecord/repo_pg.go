package medrecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ehr/hospital/internal/platform/apperr"
	"github.com/ehr/hospital/internal/platform/db"
)

type repoPG struct {
	pool db.Querier
}

func NewRepoPG(pool db.Querier) Repository {
	return &repoPG{pool: pool}
}

const recordColumns = `id, patient_id, entries, created_at, updated_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var r MedicalRecord
	if err := row.Scan(&r.ID, &r.PatientID, &r.Entries, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *repoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO medical_records (patient_id, entries)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`,
		rec.PatientID, rec.Entries,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("medical record already exists for patient %d", rec.PatientID)
	}
	if err != nil {
		return fmt.Errorf("insert medical record: %w", err)
	}
	return nil
}

func (r *repoPG) get(ctx context.Context, where string, arg int64) (*MedicalRecord, error) {
	rec, err := scanRecord(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+recordColumns+` FROM medical_records WHERE `+where+` = $1`, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("medical record", arg)
	}
	return rec, err
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*MedicalRecord, error) {
	return r.get(ctx, "id", id)
}

func (r *repoPG) GetByPatientID(ctx context.Context, patientID int64) (*MedicalRecord, error) {
	return r.get(ctx, "patient_id", patientID)
}

func (r *repoPG) Update(ctx context.Context, rec *MedicalRecord) error {
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE medical_records SET entries = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		rec.ID, rec.Entries,
	).Scan(&rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("medical record", rec.ID)
	}
	if err != nil {
		return fmt.Errorf("update medical record: %w", err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete medical record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("medical record", id)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	conn := db.Conn(ctx, r.pool)
	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM medical_records`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn.Query(ctx,
		`SELECT `+recordColumns+` FROM medical_records ORDER BY id LIMIT $1 OFFSET $2`, db.PageLimit(limit), offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}
