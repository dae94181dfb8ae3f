package entity

import "time"

// Case represents a social-assistance case file. Approval requests always
// reference a case; the reference is immutable after creation.
type Case struct {
	ID               int64     `json:"id"`
	Number           string    `json:"number"`
	FamilyID         *int64    `json:"family_id,omitempty"`
	PersonID         *int64    `json:"person_id,omitempty"`
	AssignedWorkerID string    `json:"assigned_worker_id,omitempty"`
	Status           string    `json:"status"`
	OpenedAt         time.Time `json:"opened_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Case status constants
const (
	CaseStatusOpen   = "OPEN"
	CaseStatusClosed = "CLOSED"
)
