package practitioner

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

const practitionerColumns = `id, name, specialty, license, COALESCE(username, ''), created_at, updated_at`

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p Practitioner
	if err := row.Scan(&p.ID, &p.Name, &p.Specialty, &p.License, &p.Username, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Practitioner) error {
	var username *string
	if p.Username != "" {
		username = &p.Username
	}
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO practitioners (name, specialty, license, username)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Specialty, p.License, username,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("license %s already registered", p.License)
	}
	if err != nil {
		return fmt.Errorf("insert practitioner: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Practitioner, error) {
	p, err := scanPractitioner(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+practitionerColumns+` FROM practitioners WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("practitioner", id)
	}
	return p, err
}

func (r *repoPG) Update(ctx context.Context, p *Practitioner) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE practitioners SET name = $2, specialty = $3, license = $4, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Specialty, p.License)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("license %s already registered", p.License)
	}
	if err != nil {
		return fmt.Errorf("update practitioner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("practitioner", p.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM practitioners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete practitioner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("practitioner", id)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Practitioner, int, error) {
	conn := db.Conn(ctx, r.pool)
	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM practitioners`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn.Query(ctx,
		`SELECT `+practitionerColumns+` FROM practitioners ORDER BY id LIMIT $1 OFFSET $2`, db.PageLimit(limit), offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Practitioner
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}
