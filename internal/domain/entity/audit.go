package entity

import "time"

// AuditRecord is one append-only entry in the workflow audit trail. Records are
// written inside the same transaction as the transition they describe and are
// never updated or deleted.
type AuditRecord struct {
	ID             string    `json:"id"`
	RequestID      int64     `json:"request_id"`
	ActorUserID    string    `json:"actor_user_id"`
	Action         string    `json:"action"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	// Properties holds action-specific facts (reason, justification, documents)
	// as a JSON object.
	Properties string    `json:"properties,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
