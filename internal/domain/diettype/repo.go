package diettype

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *DietType) error
	GetByID(ctx context.Context, id uuid.UUID) (*DietType, error)
	// List returns catalog entries scoped to a hospital, or all entries when
	// hospitalID is nil, sorted by name.
	List(ctx context.Context, hospitalID *uuid.UUID) ([]*DietType, error)
	// All returns every catalog entry regardless of hospital. The price
	// resolver needs the full catalog for its global and fuzzy tiers.
	All(ctx context.Context) ([]*DietType, error)
	Update(ctx context.Context, d *DietType) error
	Delete(ctx context.Context, id uuid.UUID, hospitalID *uuid.UUID) error
}
