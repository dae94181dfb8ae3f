package entity

import "time"

// Benefit represents a social-assistance benefit granted on a case. The
// activation fields (IsActive, StartedAt, EndedAt) are owned by the workflow:
// only the side-effect orchestrator acting on behalf of a transition may write
// them.
type Benefit struct {
	ID          int64      `json:"id"`
	CaseID      int64      `json:"case_id"`
	Type        string     `json:"type"`
	Description string     `json:"description,omitempty"`
	AmountCents int64      `json:"amount_cents"`
	IsActive    bool       `json:"is_active"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Benefit type constants
const (
	BenefitTypeHousing    = "HOUSING"
	BenefitTypeFood       = "FOOD"
	BenefitTypeChildcare  = "CHILDCARE"
	BenefitTypeMedical    = "MEDICAL"
	BenefitTypeUtility    = "UTILITY"
	BenefitTypeEmergency  = "EMERGENCY"
	BenefitTypeOneTimeAid = "ONE_TIME_AID"
)
