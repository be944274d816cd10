package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ehr/hospital/internal/platform/db"
)

type pgStore struct {
	pool db.Querier
}

// NewPGStore returns a Store backed by the audit_record table. Appends
// join the caller's transaction when one is bound to the context.
func NewPGStore(pool db.Querier) Store {
	return &pgStore{pool: pool}
}

const recordCols = `id, actor, entity, action, details, recorded_at`

func (s *pgStore) Append(ctx context.Context, r *Record) error {
	err := db.Conn(ctx, s.pool).QueryRow(ctx,
		`INSERT INTO audit_record (actor, entity, action, details, recorded_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		r.Actor, r.Entity, r.Action, r.Details, r.Timestamp,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (s *pgStore) List(ctx context.Context, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_record`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit records: %w", err)
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordCols+` FROM audit_record
		 ORDER BY recorded_at, id LIMIT $1 OFFSET $2`, db.PageLimit(limit), offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit records: %w", err)
	}
	records, err := scanRecords(rows)
	return records, total, err
}

func (s *pgStore) ListByActor(ctx context.Context, actor string, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_record WHERE actor = $1`, actor,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit records for %s: %w", actor, err)
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordCols+` FROM audit_record WHERE actor = $1
		 ORDER BY recorded_at, id LIMIT $2 OFFSET $3`, actor, db.PageLimit(limit), offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit records for %s: %w", actor, err)
	}
	records, err := scanRecords(rows)
	return records, total, err
}

func scanRecords(rows pgx.Rows) ([]*Record, error) {
	defer rows.Close()
	var out []*Record
	for rows.Next() {
		r := &Record{}
		if err := rows.Scan(&r.ID, &r.Actor, &r.Entity, &r.Action, &r.Details, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
