package patient

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusInPatient  = "in_patient"
	StatusDischarged = "discharged"
	StatusOutpatient = "outpatient"
)

type Patient struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	HospitalID      uuid.UUID  `db:"hospital_id" json:"hospitalId"`
	Name            string     `db:"name" json:"name"`
	DOB             *time.Time `db:"dob" json:"dob,omitempty"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	InDate          *time.Time `db:"in_date" json:"inDate,omitempty"`
	InTime          *string    `db:"in_time" json:"inTime,omitempty"`
	DischargeDate   *time.Time `db:"discharge_date" json:"dischargeDate,omitempty"`
	RoomType        *string    `db:"room_type" json:"roomType,omitempty"`
	RoomNo          *string    `db:"room_no" json:"roomNo,omitempty"`
	Bed             *string    `db:"bed" json:"bed,omitempty"`
	Diet            *string    `db:"diet" json:"diet,omitempty"`
	DietNote        *string    `db:"diet_note" json:"dietNote,omitempty"`
	Status          string     `db:"status" json:"status"`
	TransactionType *string    `db:"transaction_type" json:"transactionType,omitempty"`
	Age             *int       `db:"age" json:"age,omitempty"`
	Sex             *string    `db:"sex" json:"sex,omitempty"`
	Allergies       []string   `db:"allergies" json:"allergies,omitempty"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// Input carries a raw create or update payload. Every field is optional so
// that updates can be partial; the validator decides what is required.
type Input struct {
	Name            *string   `json:"name"`
	DOB             *string   `json:"dob"`
	Phone           *string   `json:"phone"`
	InDate          *string   `json:"inDate"`
	InTime          *string   `json:"inTime"`
	DischargeDate   *string   `json:"dischargeDate"`
	RoomType        *string   `json:"roomType"`
	RoomNo          *string   `json:"roomNo"`
	Bed             *string   `json:"bed"`
	Diet            *string   `json:"diet"`
	DietNote        *string   `json:"dietNote"`
	Status          *string   `json:"status"`
	TransactionType *string   `json:"transactionType"`
	Age             *int      `json:"age"`
	Sex             *string   `json:"sex"`
	Allergies       []string  `json:"allergies"`
	Notes           *string   `json:"notes"`
}

// FieldError reports a validation failure on a single input field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
