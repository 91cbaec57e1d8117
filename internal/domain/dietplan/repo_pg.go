package dietplan

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealtrace/catering/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const planCols = `id, hospital_id, name, patient_id, start_date, end_date, recurrence, days, notes, created_at, updated_at`

func scanRow(row pgx.Row) (*Plan, error) {
	var p Plan
	var days []byte
	err := row.Scan(&p.ID, &p.HospitalID, &p.Name, &p.PatientID, &p.StartDate, &p.EndDate,
		&p.Recurrence, &days, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(days) > 0 {
		if err := json.Unmarshal(days, &p.Days); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Plan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	days, err := json.Marshal(p.Days)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO diet_plans (id, hospital_id, name, patient_id, start_date, end_date, recurrence, days, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.HospitalID, p.Name, p.PatientID, p.StartDate, p.EndDate, p.Recurrence, days, p.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+planCols+` FROM diet_plans WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, hospitalID *uuid.UUID, limit int) ([]*Plan, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := `SELECT ` + planCols + ` FROM diet_plans`
	args := []interface{}{}
	if hospitalID != nil {
		q += ` WHERE hospital_id = $1`
		args = append(args, *hospitalID)
		q += ` ORDER BY created_at DESC LIMIT $2`
	} else {
		q += ` ORDER BY created_at DESC LIMIT $1`
	}
	args = append(args, limit)
	return r.queryAll(ctx, q, args...)
}

func (r *repoPG) ActiveOn(ctx context.Context, day time.Time) ([]*Plan, error) {
	return r.queryAll(ctx, `
		SELECT `+planCols+` FROM diet_plans
		WHERE (recurrence = 'none' AND start_date = $1)
		   OR (recurrence <> 'none' AND start_date <= $1 AND (end_date IS NULL OR end_date >= $1))`,
		day)
}

func (r *repoPG) Update(ctx context.Context, p *Plan) error {
	days, err := json.Marshal(p.Days)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE diet_plans SET name=$2, patient_id=$3, start_date=$4, end_date=$5, recurrence=$6, days=$7, notes=$8, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.PatientID, p.StartDate, p.EndDate, p.Recurrence, days, p.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM diet_plans WHERE id = $1`, id)
	return err
}

func (r *repoPG) queryAll(ctx context.Context, q string, args ...interface{}) ([]*Plan, error) {
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Plan
	for rows.Next() {
		p, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
