package reports

import (
	"time"

	"github.com/google/uuid"
)

// SupervisorRow is one line of the diet-supervisor daily view: an assignment
// joined to its patient's room details.
type SupervisorRow struct {
	ID          uuid.UUID `json:"id"`
	Date        time.Time `json:"date"`
	PatientID   uuid.UUID `json:"patientId"`
	PatientName string    `json:"patientName"`
	Phone       string    `json:"phone"`
	RoomType    string    `json:"roomType"`
	RoomNo      string    `json:"roomNo"`
	Bed         string    `json:"bed,omitempty"`
	Diet        string    `json:"diet"`
	Note        string    `json:"note,omitempty"`
	Status      string    `json:"status"`
	FromTime    string    `json:"fromTime,omitempty"`
	ToTime      string    `json:"toTime,omitempty"`
}

// BusinessRangeRow is the per-patient bill for a completed stay.
type BusinessRangeRow struct {
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	InDate         time.Time  `json:"inDate"`
	DischargeDate  *time.Time `json:"dischargeDate"`
	BillAmount     float64    `json:"billAmount"`
	DeliveredCount int        `json:"deliveredCount"`
}

type OverTimePoint struct {
	Bucket  string         `json:"bucket"`
	Counts  map[string]int `json:"counts"`
	Revenue float64        `json:"revenue"`
}

type RoomTypeRow struct {
	RoomType string         `json:"roomType"`
	Counts   map[string]int `json:"counts"`
	Total    int            `json:"total"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type PayerRow struct {
	Payer   string  `json:"payer"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type Totals struct {
	DeliveredCount int     `json:"deliveredCount"`
	PatientCount   int     `json:"patientCount"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

type Analytics struct {
	OverTime         []OverTimePoint `json:"overTime"`
	ByRoomType       []RoomTypeRow   `json:"byRoomType"`
	DietDistribution []LabelCount    `json:"dietDistribution"`
	PayerMix         []PayerRow      `json:"payerMix"`
	Totals           Totals          `json:"totals"`
}
