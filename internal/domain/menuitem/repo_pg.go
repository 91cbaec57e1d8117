package menuitem

import (
	"context"
	"fmt"

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

const menuItemCols = `id, hospital_id, name, description, diet_tags, calories, allergens, price, created_at, updated_at`

func scanRow(row pgx.Row) (*MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.HospitalID, &m.Name, &m.Description, &m.DietTags, &m.Calories,
		&m.Allergens, &m.Price, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *MenuItem) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO menu_items (id, hospital_id, name, description, diet_tags, calories, allergens, price)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.HospitalID, m.Name, m.Description, m.DietTags, m.Calories, m.Allergens, m.Price)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	return scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+menuItemCols+` FROM menu_items WHERE id = $1`, id))
}

func (r *repoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*MenuItem, error) {
	out := make(map[uuid.UUID]*MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+menuItemCols+` FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

func (r *repoPG) List(ctx context.Context, hospitalID *uuid.UUID, limit, offset int) ([]*MenuItem, int, error) {
	cond := ""
	args := []interface{}{}
	if hospitalID != nil {
		cond = ` WHERE hospital_id = $1`
		args = append(args, *hospitalID)
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM menu_items`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	q := fmt.Sprintf(`SELECT `+menuItemCols+` FROM menu_items`+cond+
		` ORDER BY name LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*MenuItem
	for rows.Next() {
		m, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, m *MenuItem) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE menu_items SET name=$2, description=$3, diet_tags=$4, calories=$5, allergens=$6, price=$7, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Description, m.DietTags, m.Calories, m.Allergens, m.Price)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	return err
}
