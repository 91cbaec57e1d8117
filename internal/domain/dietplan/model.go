package dietplan

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	RecurrenceNone    = "none"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

var ValidRecurrences = map[string]bool{
	RecurrenceNone: true, RecurrenceDaily: true, RecurrenceWeekly: true, RecurrenceMonthly: true,
}

// PlanItem references a menu item, optionally with per-item notes. Older
// clients send a bare id string instead of an object; both forms decode.
type PlanItem struct {
	ID    string `json:"id"`
	Notes string `json:"notes,omitempty"`
}

func (p *PlanItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.ID = s
		p.Notes = ""
		return nil
	}
	type alias PlanItem
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = PlanItem(a)
	return nil
}

type Meal struct {
	Slot  string     `json:"slot"`
	Items []PlanItem `json:"items"`
}

// Day holds the meals for one weekday. DayIndex 0 is Monday.
type Day struct {
	DayIndex int    `json:"dayIndex"`
	Meals    []Meal `json:"meals"`
}

type Plan struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	HospitalID *uuid.UUID `db:"hospital_id" json:"hospitalId,omitempty"`
	Name       *string    `db:"name" json:"name,omitempty"`
	PatientID  *uuid.UUID `db:"patient_id" json:"patientId,omitempty"`
	StartDate  time.Time  `db:"start_date" json:"startDate"`
	EndDate    *time.Time `db:"end_date" json:"endDate,omitempty"`
	Recurrence string     `db:"recurrence" json:"recurrence"`
	Days       []Day      `db:"days" json:"days"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

// CoversDay reports whether the plan is in effect on the given day-start
// instant. One-shot plans cover only their start day.
func (p *Plan) CoversDay(day time.Time) bool {
	if p.Recurrence == RecurrenceNone || p.Recurrence == "" {
		return p.StartDate.Equal(day)
	}
	if day.Before(p.StartDate) {
		return false
	}
	if p.EndDate != nil && day.After(*p.EndDate) {
		return false
	}
	return true
}

// DayFor picks the template day for a weekday where Monday is 0. When no
// entry matches, the first day is used as a fallback.
func (p *Plan) DayFor(mondayIndex int) *Day {
	for i := range p.Days {
		if p.Days[i].DayIndex == mondayIndex {
			return &p.Days[i]
		}
	}
	if len(p.Days) > 0 {
		return &p.Days[0]
	}
	return nil
}
