// Package activity provides the activity stream: a per-workspace record
// of who did what to which document.
package activity

import (
	"context"
	"encoding/json"
	"time"

	"fakturo/internal/core/id"
)

// Verb describes what happened to the entity.
type Verb string

const (
	VerbCreated Verb = "created"
	VerbUpdated Verb = "updated"
	VerbDeleted Verb = "deleted"
)

// Activity is one entry in the activity stream.
type Activity struct {
	ID         id.ID           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   id.ID           `db:"entity_id" json:"entityId"`
	Verb       Verb            `db:"verb" json:"verb"`
	UserID     string          `db:"user_id" json:"userId,omitempty"`
	Payload    json.RawMessage `db:"payload" json:"payload,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// New creates an activity entry with a fresh ID and timestamp.
func New(entityType string, entityID id.ID, verb Verb) *Activity {
	return &Activity{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Verb:       verb,
		CreatedAt:  time.Now().UTC(),
	}
}

// Store persists activity entries. Implementations may compress large
// payloads; readers always get them back uncompressed.
type Store interface {
	// Record inserts an entry within the ambient transaction.
	Record(ctx context.Context, a *Activity) error

	// ListForEntity returns the newest entries for one entity.
	ListForEntity(ctx context.Context, entityType string, entityID id.ID, limit int) ([]*Activity, error)
}
