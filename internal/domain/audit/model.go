package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry records a single mutation against a catering entity. Entries are
// written best-effort; a failed audit write never fails the mutation itself.
type Entry struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	Entity    string      `db:"entity" json:"entity"`
	EntityID  string      `db:"entity_id" json:"entity_id"`
	Action    string      `db:"action" json:"action"`
	UserID    *string     `db:"user_id" json:"user_id,omitempty"`
	Details   interface{} `db:"details" json:"details,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
