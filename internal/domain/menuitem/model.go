package menuitem

import (
	"time"

	"github.com/google/uuid"
)

type MenuItem struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	HospitalID  *uuid.UUID `db:"hospital_id" json:"hospitalId,omitempty"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	DietTags    []string   `db:"diet_tags" json:"dietTags,omitempty"`
	Calories    *int       `db:"calories" json:"calories,omitempty"`
	Allergens   []string   `db:"allergens" json:"allergens,omitempty"`
	Price       float64    `db:"price" json:"price"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

type Input struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	DietTags    []string `json:"dietTags"`
	Calories    *int     `json:"calories"`
	Allergens   []string `json:"allergens"`
	Price       *float64 `json:"price"`
}
