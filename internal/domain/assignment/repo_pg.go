package assignment

import (
	"context"
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

const assignmentCols = `id, patient_id, hospital_id, date, from_time, to_time, diet, note,
	status, delivered_by, delivered_at, price, created_at, updated_at`

func scanRow(row pgx.Row) (*Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.PatientID, &a.HospitalID, &a.Date, &a.FromTime, &a.ToTime, &a.Diet, &a.Note,
		&a.Status, &a.DeliveredBy, &a.DeliveredAt, &a.Price, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Assignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO diet_assignments (id, patient_id, hospital_id, date, from_time, to_time, diet, note,
			status, delivered_by, delivered_at, price)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.PatientID, a.HospitalID, a.Date, a.FromTime, a.ToTime, a.Diet, a.Note,
		a.Status, a.DeliveredBy, a.DeliveredAt, a.Price)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	return scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+assignmentCols+` FROM diet_assignments WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, hospitalID *uuid.UUID) ([]*Assignment, error) {
	q := `SELECT ` + assignmentCols + ` FROM diet_assignments WHERE patient_id = $1`
	args := []interface{}{patientID}
	if hospitalID != nil {
		q += ` AND hospital_id = $2`
		args = append(args, *hospitalID)
	}
	return r.queryAll(ctx, q+` ORDER BY date DESC, created_at DESC`, args...)
}

func (r *repoPG) ListByDate(ctx context.Context, hospitalID *uuid.UUID, date time.Time) ([]*Assignment, error) {
	q := `SELECT ` + assignmentCols + ` FROM diet_assignments WHERE date = $1`
	args := []interface{}{date}
	if hospitalID != nil {
		q += ` AND hospital_id = $2`
		args = append(args, *hospitalID)
	}
	return r.queryAll(ctx, q+` ORDER BY date, created_at`, args...)
}

func (r *repoPG) ListByDateRange(ctx context.Context, hospitalID *uuid.UUID, from, to time.Time) ([]*Assignment, error) {
	q := `SELECT ` + assignmentCols + ` FROM diet_assignments WHERE date >= $1 AND date <= $2`
	args := []interface{}{from, to}
	if hospitalID != nil {
		q += ` AND hospital_id = $3`
		args = append(args, *hospitalID)
	}
	return r.queryAll(ctx, q+` ORDER BY date, created_at`, args...)
}

func (r *repoPG) ExistsForPatientDate(ctx context.Context, patientID uuid.UUID, date time.Time, hospitalID *uuid.UUID) (bool, error) {
	q := `SELECT EXISTS(SELECT 1 FROM diet_assignments WHERE patient_id = $1 AND date = $2`
	args := []interface{}{patientID, date}
	if hospitalID != nil {
		q += ` AND hospital_id = $3`
		args = append(args, *hospitalID)
	}
	q += `)`
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, q, args...).Scan(&exists)
	return exists, err
}

func (r *repoPG) Update(ctx context.Context, a *Assignment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE diet_assignments SET date=$2, from_time=$3, to_time=$4, diet=$5, note=$6,
			status=$7, delivered_by=$8, delivered_at=$9, price=$10, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Date, a.FromTime, a.ToTime, a.Diet, a.Note,
		a.Status, a.DeliveredBy, a.DeliveredAt, a.Price)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM diet_assignments WHERE id = $1`, id)
	return err
}

func (r *repoPG) queryAll(ctx context.Context, q string, args ...interface{}) ([]*Assignment, error) {
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Assignment
	for rows.Next() {
		a, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
