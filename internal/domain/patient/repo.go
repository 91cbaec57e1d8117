package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Filter struct {
	HospitalID *uuid.UUID
	Status     string
	RoomType   string
	Search     string
}

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ActiveWithDiet returns non-discharged patients that carry a diet label.
	ActiveWithDiet(ctx context.Context, hospitalID *uuid.UUID) ([]*Patient, error)
	// RoomTypes returns the distinct room types present for a hospital.
	RoomTypes(ctx context.Context, hospitalID *uuid.UUID) ([]string, error)
	// AdmittedWithin returns patients whose admission and discharge dates both
	// fall inside [from, to].
	AdmittedWithin(ctx context.Context, hospitalID *uuid.UUID, from, to time.Time) ([]*Patient, error)
}
