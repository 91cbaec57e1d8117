package order

import (
	"context"
	"encoding/json"
	"fmt"
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

const orderCols = `id, hospital_id, date, items, kitchen_status, delivery_status,
	assigned_to, notes, source_plan_id, created_at, updated_at`

func scanRow(row pgx.Row) (*Order, error) {
	var o Order
	var items []byte
	err := row.Scan(&o.ID, &o.HospitalID, &o.Date, &items, &o.KitchenStatus, &o.DeliveryStatus,
		&o.AssignedTo, &o.Notes, &o.SourcePlanID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

func (r *repoPG) Create(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO orders (id, hospital_id, date, items, kitchen_status, delivery_status,
			assigned_to, notes, source_plan_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.HospitalID, o.Date, items, o.KitchenStatus, o.DeliveryStatus,
		o.AssignedTo, o.Notes, o.SourcePlanID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1`, id))
}

func (r *repoPG) ListByDate(ctx context.Context, hospitalID *uuid.UUID, date time.Time, limit int) ([]*Order, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	q := `SELECT ` + orderCols + ` FROM orders WHERE date = $1`
	args := []interface{}{date}
	if hospitalID != nil {
		q += ` AND hospital_id = $2`
		args = append(args, *hospitalID)
	}
	q += fmt.Sprintf(` ORDER BY created_at LIMIT $%d`, len(args)+1)
	args = append(args, limit)
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Order
	for rows.Next() {
		o, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE orders SET date=$2, items=$3, kitchen_status=$4, delivery_status=$5,
			assigned_to=$6, notes=$7, updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.Date, items, o.KitchenStatus, o.DeliveryStatus, o.AssignedTo, o.Notes)
	return err
}

func (r *repoPG) BulkDeliver(ctx context.Context, ids []uuid.UUID) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE orders SET delivery_status = 'delivered', updated_at = NOW()
		WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *repoPG) ExistsForPlanDate(ctx context.Context, sourcePlanID uuid.UUID, date time.Time, hospitalID *uuid.UUID) (bool, error) {
	q := `SELECT EXISTS(SELECT 1 FROM orders WHERE source_plan_id = $1 AND date = $2`
	args := []interface{}{sourcePlanID, date}
	if hospitalID != nil {
		q += ` AND hospital_id = $3`
		args = append(args, *hospitalID)
	} else {
		q += ` AND hospital_id IS NULL`
	}
	q += `)`
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, q, args...).Scan(&exists)
	return exists, err
}
