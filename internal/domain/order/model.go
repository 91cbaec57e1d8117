package order

import (
	"time"

	"github.com/google/uuid"
)

const (
	KitchenPending   = "pending"
	KitchenPreparing = "preparing"
	KitchenReady     = "ready"
	KitchenCancelled = "cancelled"

	DeliveryPending   = "pending"
	DeliveryAssigned  = "assigned"
	DeliveryInTransit = "in_transit"
	DeliveryDelivered = "delivered"
)

var ValidKitchenStatuses = map[string]bool{
	KitchenPending: true, KitchenPreparing: true, KitchenReady: true, KitchenCancelled: true,
}

var ValidDeliveryStatuses = map[string]bool{
	DeliveryPending: true, DeliveryAssigned: true, DeliveryInTransit: true, DeliveryDelivered: true,
}

type Item struct {
	PatientID  uuid.UUID `json:"patientId"`
	MenuItemID uuid.UUID `json:"menuItemId"`
	Quantity   int       `json:"quantity"`
	Notes      string    `json:"notes,omitempty"`
	MealSlot   string    `json:"mealSlot,omitempty"`
	UnitPrice  float64   `json:"unitPrice"`
}

type Order struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	HospitalID     *uuid.UUID `db:"hospital_id" json:"hospitalId,omitempty"`
	Date           time.Time  `db:"date" json:"date"`
	Items          []Item     `db:"items" json:"items"`
	KitchenStatus  string     `db:"kitchen_status" json:"kitchenStatus"`
	DeliveryStatus string     `db:"delivery_status" json:"deliveryStatus"`
	AssignedTo     *uuid.UUID `db:"assigned_to" json:"assignedTo,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	SourcePlanID   *uuid.UUID `db:"source_plan_id" json:"sourcePlanId,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}
