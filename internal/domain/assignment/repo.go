package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error)
	// ListByPatient returns a patient's assignments sorted by date desc then
	// creation time desc.
	ListByPatient(ctx context.Context, patientID uuid.UUID, hospitalID *uuid.UUID) ([]*Assignment, error)
	// ListByDate returns assignments whose stored date equals the day-start
	// instant.
	ListByDate(ctx context.Context, hospitalID *uuid.UUID, date time.Time) ([]*Assignment, error)
	// ListByDateRange returns assignments with date within [from, to]
	// inclusive, both day-start instants.
	ListByDateRange(ctx context.Context, hospitalID *uuid.UUID, from, to time.Time) ([]*Assignment, error)
	// ExistsForPatientDate reports whether the patient already has any
	// assignment dated exactly the given day-start instant.
	ExistsForPatientDate(ctx context.Context, patientID uuid.UUID, date time.Time, hospitalID *uuid.UUID) (bool, error)
	Update(ctx context.Context, a *Assignment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
