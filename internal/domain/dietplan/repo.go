package dietplan

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	List(ctx context.Context, hospitalID *uuid.UUID, limit int) ([]*Plan, error)
	// ActiveOn returns plans whose date range covers the given day-start
	// instant, including one-shot plans starting exactly on it.
	ActiveOn(ctx context.Context, day time.Time) ([]*Plan, error)
	Update(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
}
