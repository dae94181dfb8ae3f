package entity

import (
	"time"

	"github.com/openmuni/casework/internal/domain/workflow"
)

// ApprovalRequest is the aggregate root of the approval workflow. It tracks a
// benefit/case decision from draft to a terminal outcome and is mutated
// exclusively through named workflow transitions.
type ApprovalRequest struct {
	ID        int64  `json:"id"`
	CaseID    int64  `json:"case_id"`
	BenefitID *int64 `json:"benefit_id,omitempty"`
	FamilyID  *int64 `json:"family_id,omitempty"`
	PersonID  *int64 `json:"person_id,omitempty"`

	Status workflow.State `json:"status"`

	SubmittedByUserID string     `json:"submitted_by_user_id,omitempty"`
	DecidedByUserID   string     `json:"decided_by_user_id,omitempty"`
	DecidedAt         *time.Time `json:"decided_at,omitempty"`

	// Reason is overwritten, not appended, on each decision transition that
	// carries one (reject, cancel, revoke).
	Reason string `json:"reason,omitempty"`

	Metadata Metadata `json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasBenefit reports whether the request is linked to a benefit record
func (r *ApprovalRequest) HasBenefit() bool {
	return r.BenefitID != nil
}

// Clone returns a deep copy of the request. Workflow actions mutate a copy and
// persist it, leaving the caller's aggregate untouched on failure.
func (r *ApprovalRequest) Clone() *ApprovalRequest {
	out := *r
	out.BenefitID = cloneInt64(r.BenefitID)
	out.FamilyID = cloneInt64(r.FamilyID)
	out.PersonID = cloneInt64(r.PersonID)
	out.DecidedAt = cloneTime(r.DecidedAt)
	out.Metadata = r.Metadata.Clone()
	return &out
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
