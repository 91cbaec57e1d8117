package patient

import (
	"context"
	"fmt"
	"strings"
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

const patientCols = `id, hospital_id, name, dob, phone, in_date, in_time, discharge_date,
	room_type, room_no, bed, diet, diet_note, status, transaction_type,
	age, sex, allergies, notes, created_at, updated_at`

func scanRow(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.HospitalID, &p.Name, &p.DOB, &p.Phone, &p.InDate, &p.InTime, &p.DischargeDate,
		&p.RoomType, &p.RoomNo, &p.Bed, &p.Diet, &p.DietNote, &p.Status, &p.TransactionType,
		&p.Age, &p.Sex, &p.Allergies, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, hospital_id, name, dob, phone, in_date, in_time, discharge_date,
			room_type, room_no, bed, diet, diet_note, status, transaction_type,
			age, sex, allergies, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		p.ID, p.HospitalID, p.Name, p.DOB, p.Phone, p.InDate, p.InTime, p.DischargeDate,
		p.RoomType, p.RoomNo, p.Bed, p.Diet, p.DietNote, p.Status, p.TransactionType,
		p.Age, p.Sex, p.Allergies, p.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	n := 0
	arg := func(v interface{}) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}
	if f.HospitalID != nil {
		where = append(where, "hospital_id = "+arg(*f.HospitalID))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.RoomType != "" {
		where = append(where, "room_type = "+arg(f.RoomType))
	}
	if f.Search != "" {
		where = append(where, "name ILIKE "+arg("%"+f.Search+"%"))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := `SELECT ` + patientCols + ` FROM patients WHERE ` + cond +
		` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET name=$2, dob=$3, phone=$4, in_date=$5, in_time=$6, discharge_date=$7,
			room_type=$8, room_no=$9, bed=$10, diet=$11, diet_note=$12, status=$13,
			transaction_type=$14, age=$15, sex=$16, allergies=$17, notes=$18, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.DOB, p.Phone, p.InDate, p.InTime, p.DischargeDate,
		p.RoomType, p.RoomNo, p.Bed, p.Diet, p.DietNote, p.Status,
		p.TransactionType, p.Age, p.Sex, p.Allergies, p.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *repoPG) ActiveWithDiet(ctx context.Context, hospitalID *uuid.UUID) ([]*Patient, error) {
	q := `SELECT ` + patientCols + ` FROM patients
		WHERE status <> 'discharged' AND diet IS NOT NULL AND diet <> ''`
	args := []interface{}{}
	if hospitalID != nil {
		q += ` AND hospital_id = $1`
		args = append(args, *hospitalID)
	}
	return r.queryAll(ctx, q, args...)
}

func (r *repoPG) RoomTypes(ctx context.Context, hospitalID *uuid.UUID) ([]string, error) {
	q := `SELECT DISTINCT room_type FROM patients WHERE room_type IS NOT NULL AND room_type <> ''`
	args := []interface{}{}
	if hospitalID != nil {
		q += ` AND hospital_id = $1`
		args = append(args, *hospitalID)
	}
	rows, err := r.conn(ctx).Query(ctx, q+` ORDER BY room_type`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var rt string
		if err := rows.Scan(&rt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *repoPG) AdmittedWithin(ctx context.Context, hospitalID *uuid.UUID, from, to time.Time) ([]*Patient, error) {
	q := `SELECT ` + patientCols + ` FROM patients
		WHERE in_date IS NOT NULL AND discharge_date IS NOT NULL
		  AND in_date >= $1 AND in_date <= $2
		  AND discharge_date >= $1 AND discharge_date <= $2`
	args := []interface{}{from, to}
	if hospitalID != nil {
		q += ` AND hospital_id = $3`
		args = append(args, *hospitalID)
	}
	return r.queryAll(ctx, q+` ORDER BY in_date`, args...)
}

func (r *repoPG) queryAll(ctx context.Context, q string, args ...interface{}) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
