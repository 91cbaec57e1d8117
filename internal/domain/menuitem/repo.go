package menuitem

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *MenuItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	// GetByIDs returns the subset of items that exist; missing ids are simply
	// absent from the result.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*MenuItem, error)
	List(ctx context.Context, hospitalID *uuid.UUID, limit, offset int) ([]*MenuItem, int, error)
	Update(ctx context.Context, m *MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}
