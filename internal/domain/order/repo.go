package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// ListByDate returns orders whose date equals the given day-start instant.
	ListByDate(ctx context.Context, hospitalID *uuid.UUID, date time.Time, limit int) ([]*Order, error)
	Update(ctx context.Context, o *Order) error
	// BulkDeliver marks the given orders delivered and reports how many rows
	// matched.
	BulkDeliver(ctx context.Context, ids []uuid.UUID) (int, error)
	// ExistsForPlanDate reports whether a plan already produced an order for
	// the given day and hospital.
	ExistsForPlanDate(ctx context.Context, sourcePlanID uuid.UUID, date time.Time, hospitalID *uuid.UUID) (bool, error)
}
