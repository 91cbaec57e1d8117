package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	var details []byte
	if e.Details != nil {
		details, _ = json.Marshal(e.Details)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (id, entity, entity_id, action, user_id, details)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.Entity, e.EntityID, e.Action, e.UserID, details)
	return err
}

func (r *repoPG) ListByEntity(ctx context.Context, entity, entityID string, limit int) ([]*Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity, entity_id, action, user_id, details, created_at
		FROM audit_log
		WHERE entity = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3`, entity, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Entry
	for rows.Next() {
		var e Entry
		var details []byte
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &e.Action, &e.UserID, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			var v interface{}
			if json.Unmarshal(details, &v) == nil {
				e.Details = v
			}
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}
