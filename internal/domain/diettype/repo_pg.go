package diettype

import (
	"context"
	"errors"

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

const dietTypeCols = `id, hospital_id, name, default_price, active, created_at, updated_at`

func scanRow(row pgx.Row) (*DietType, error) {
	var d DietType
	err := row.Scan(&d.ID, &d.HospitalID, &d.Name, &d.DefaultPrice, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *DietType) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO diet_types (id, hospital_id, name, default_price, active)
		VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.HospitalID, d.Name, d.DefaultPrice, d.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*DietType, error) {
	return scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+dietTypeCols+` FROM diet_types WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, hospitalID *uuid.UUID) ([]*DietType, error) {
	q := `SELECT ` + dietTypeCols + ` FROM diet_types`
	args := []interface{}{}
	if hospitalID != nil {
		q += ` WHERE hospital_id = $1`
		args = append(args, *hospitalID)
	}
	return r.queryAll(ctx, q+` ORDER BY name`, args...)
}

func (r *repoPG) All(ctx context.Context) ([]*DietType, error) {
	return r.queryAll(ctx, `SELECT `+dietTypeCols+` FROM diet_types ORDER BY name`)
}

func (r *repoPG) Update(ctx context.Context, d *DietType) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE diet_types SET name=$2, default_price=$3, active=$4, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.DefaultPrice, d.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID) error {
	q := `DELETE FROM diet_types WHERE id = $1`
	args := []interface{}{id}
	if hospitalID != nil {
		q += ` AND hospital_id = $2`
		args = append(args, *hospitalID)
	}
	tag, err := r.conn(ctx).Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) queryAll(ctx context.Context, q string, args ...interface{}) ([]*DietType, error) {
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()
	var items []*DietType
	for rows.Next() {
		d, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
