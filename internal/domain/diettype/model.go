package diettype

import (
	"time"

	"github.com/google/uuid"
)

type DietType struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	HospitalID   *uuid.UUID `db:"hospital_id" json:"hospitalId,omitempty"`
	Name         string     `db:"name" json:"name"`
	DefaultPrice float64    `db:"default_price" json:"defaultPrice"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// NameRef is the reduced listing shape returned to non-admin callers.
type NameRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
