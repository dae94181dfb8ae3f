package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/openmuni/casework/internal/domain/entity"
	domainwf "github.com/openmuni/casework/internal/domain/workflow"
)

// checkState verifies the request's current status is a permitted source state
// for the action. First guard; nothing is mutated before it passes. A stored
// status outside the closed state set (a corrupted row) is rejected by the
// machine constructor before the transition table is consulted.
func checkState(req *entity.ApprovalRequest, action domainwf.Action) error {
	machine, err := domainwf.NewMachine(req.Status)
	if err != nil {
		return err
	}
	if !machine.CanApply(action) {
		return domainwf.NewInvalidTransition(action, req.Status, domainwf.AllowedSources(action))
	}
	return nil
}

// checkRole verifies the actor's role capability satisfies the action's
// requirement, including the self-approval ban.
func checkRole(req *entity.ApprovalRequest, actor *entity.User, action domainwf.Action) error {
	switch action {
	case domainwf.ActionSubmit, domainwf.ActionResubmit:
		if !actor.CanSubmit() {
			return domainwf.NewUnauthorized(action, "requires social worker or admin")
		}

	case domainwf.ActionStartReview, domainwf.ActionReject, domainwf.ActionRequestDocuments:
		if !actor.CanReview() {
			return domainwf.NewUnauthorized(action, "requires reviewer capability")
		}

	case domainwf.ActionApprove:
		if !actor.CanApprove() {
			return domainwf.NewUnauthorized(action, "requires approver capability")
		}
		if req.SubmittedByUserID != "" && actor.ID == req.SubmittedByUserID {
			return domainwf.NewUnauthorized(action, "submitter cannot approve their own request")
		}

	case domainwf.ActionFastTrackApprove:
		if !actor.IsCoordinator() && !actor.IsAdmin() {
			return domainwf.NewUnauthorized(action, "requires coordinator or admin")
		}

	case domainwf.ActionCancel, domainwf.ActionRevoke:
		if !actor.IsAdmin() {
			return domainwf.NewUnauthorized(action, "requires admin")
		}

	case domainwf.ActionConfirmFastTrack:
		if !actor.CanApprove() {
			return domainwf.NewUnauthorized(action, "requires approver capability")
		}
		if ft := req.Metadata.FastTrack; ft != nil && actor.ID == ft.ApprovedBy {
			return domainwf.NewUnauthorized(action, "fast-track approver cannot confirm their own approval")
		}

	case domainwf.ActionExpire:
		if actor.ID != "system" && !actor.IsAdmin() {
			return domainwf.NewUnauthorized(action, "system or admin only")
		}

	default:
		return domainwf.NewUnauthorized(action, "unknown action")
	}
	return nil
}

// checkPayload verifies the action-specific required fields. For Submit it also
// runs the duplicate guard, inside the caller's transaction.
func (s *serviceImpl) checkPayload(ctx context.Context, req *entity.ApprovalRequest, action domainwf.Action, p payload) error {
	switch action {
	case domainwf.ActionSubmit:
		if req.CaseID == 0 {
			return domainwf.NewValidation("case_id", "required")
		}
		return s.checkDuplicate(ctx, req)

	case domainwf.ActionReject, domainwf.ActionCancel, domainwf.ActionRevoke:
		if strings.TrimSpace(p.reason) == "" {
			return domainwf.NewValidation("reason", "must not be empty")
		}

	case domainwf.ActionRequestDocuments:
		if len(p.documents) == 0 {
			return domainwf.NewValidation("documents", "must not be empty")
		}
		for _, doc := range p.documents {
			if strings.TrimSpace(doc) == "" {
				return domainwf.NewValidation("documents", "entries must not be blank")
			}
		}

	case domainwf.ActionFastTrackApprove:
		justification := strings.TrimSpace(p.justification)
		if justification == "" {
			return domainwf.NewValidation("justification", "must not be empty")
		}
		if len(justification) < s.minJustification {
			return domainwf.NewValidation("justification",
				fmt.Sprintf("must be at least %d characters", s.minJustification))
		}

	case domainwf.ActionConfirmFastTrack:
		ft := req.Metadata.FastTrack
		if ft == nil {
			return domainwf.NewValidation("fast_track", "no fast-track approval on record")
		}
		if !ft.RequiresConfirmation {
			return domainwf.NewValidation("fast_track", "already confirmed")
		}
	}
	return nil
}

// checkDuplicate enforces the cross-aggregate invariant: at most one
// non-terminal request per (case_id, benefit_id) pair. It runs inside the
// submit transaction so the check and the resulting status change are
// serialized against concurrent submissions; the partial unique index on
// approval_requests is the database-level backstop.
func (s *serviceImpl) checkDuplicate(ctx context.Context, req *entity.ApprovalRequest) error {
	others, err := s.requests.FindActive(ctx, req.CaseID, req.BenefitID, domainwf.NonTerminalStates(), req.ID)
	if err != nil {
		return fmt.Errorf("duplicate check: %w", err)
	}
	if len(others) > 0 {
		return fmt.Errorf("%w: request %d is already active for case %d",
			domainwf.ErrConflict, others[0].ID, req.CaseID)
	}
	return nil
}
