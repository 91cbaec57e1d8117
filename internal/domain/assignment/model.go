package assignment

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// UpdateDiets is the closed set accepted on the update path. Creation paths
// accept free text so that a patient's current diet label can flow through.
var UpdateDiets = map[string]bool{
	"Normal Diet": true, "Liquid Diet": true, "Protein Diet": true, "Other": true,
}

type Assignment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patientId"`
	HospitalID  *uuid.UUID `db:"hospital_id" json:"hospitalId,omitempty"`
	Date        time.Time  `db:"date" json:"date"`
	FromTime    *string    `db:"from_time" json:"fromTime,omitempty"`
	ToTime      *string    `db:"to_time" json:"toTime,omitempty"`
	Diet        string     `db:"diet" json:"diet"`
	Note        *string    `db:"note" json:"note,omitempty"`
	Status      string     `db:"status" json:"status"`
	DeliveredBy *string    `db:"delivered_by" json:"deliveredBy,omitempty"`
	DeliveredAt *time.Time `db:"delivered_at" json:"deliveredAt,omitempty"`
	Price       float64    `db:"price" json:"price"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// RangeResult reports the outcome of one day or patient in a batch
// operation.
type RangeResult struct {
	Date      string     `json:"date,omitempty"`
	PatientID *uuid.UUID `json:"patientId,omitempty"`
	Action    string     `json:"action"`
	Reason    string     `json:"reason,omitempty"`
	ID        *uuid.UUID `json:"id,omitempty"`
}

// BatchReport aggregates batch outcomes, one entry per processed unit.
type BatchReport struct {
	Count   int           `json:"count"`
	Results []RangeResult `json:"results"`
}
