package dto

import (
	"encoding/json"
	"time"

	"fakturo/internal/domain/activity"
)

// ActivityResponse is one activity stream entry.
type ActivityResponse struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Verb       activity.Verb   `json:"verb"`
	UserID     string          `json:"userId,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// FromActivity creates response DTO from a stream entry.
func FromActivity(a *activity.Activity) *ActivityResponse {
	return &ActivityResponse{
		ID:         a.ID.String(),
		EntityType: a.EntityType,
		EntityID:   a.EntityID.String(),
		Verb:       a.Verb,
		UserID:     a.UserID,
		Payload:    a.Payload,
		CreatedAt:  a.CreatedAt,
	}
}
