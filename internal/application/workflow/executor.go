package workflow

import (
	"strings"
	"time"

	"github.com/openmuni/casework/internal/domain/entity"
	domainwf "github.com/openmuni/casework/internal/domain/workflow"
)

// applyTransition mutates the aggregate for one transition: target status,
// actor/decision fields, and the action's metadata sub-record. It operates on a
// clone; the caller persists the result, so either all field mutations land or
// none do. Metadata is merged sub-record by sub-record, never replaced.
func applyTransition(req *entity.ApprovalRequest, actor *entity.User, action domainwf.Action, p payload, now time.Time) error {
	prior := req.Status

	machine, err := domainwf.NewMachine(req.Status)
	if err != nil {
		return err
	}
	if err := machine.Apply(action); err != nil {
		return err
	}
	req.Status = machine.State()

	rule, _ := domainwf.RuleFor(action)
	if rule.Decision {
		req.DecidedByUserID = actor.ID
		req.DecidedAt = &now
	}

	switch action {
	case domainwf.ActionSubmit:
		req.SubmittedByUserID = actor.ID

	case domainwf.ActionResubmit:
		req.SubmittedByUserID = actor.ID
		req.Metadata.ArchiveRequestedDocuments()
		if len(p.documentsProvided) > 0 {
			req.Metadata.DocumentsProvided = append([]string{}, p.documentsProvided...)
		}
		resubmittedAt := now
		req.Metadata.ResubmittedAt = &resubmittedAt

	case domainwf.ActionReject:
		req.Reason = strings.TrimSpace(p.reason)

	case domainwf.ActionRequestDocuments:
		req.Metadata.DocumentsRequested = append([]string{}, p.documents...)
		requestedAt := now
		req.Metadata.DocumentsRequestedAt = &requestedAt

	case domainwf.ActionFastTrackApprove:
		req.Metadata.FastTrack = &entity.FastTrackRecord{
			Justification:        strings.TrimSpace(p.justification),
			ApprovedBy:           actor.ID,
			ApprovedAt:           now,
			EmergencyApproval:    true,
			RequiresConfirmation: true,
		}

	case domainwf.ActionConfirmFastTrack:
		ft := req.Metadata.FastTrack
		ft.RequiresConfirmation = false
		ft.ConfirmedBy = actor.ID
		confirmedAt := now
		ft.ConfirmedAt = &confirmedAt

	case domainwf.ActionCancel:
		req.Reason = strings.TrimSpace(p.reason)
		req.Metadata.Cancellation = &entity.CancellationRecord{
			Reason:      req.Reason,
			CancelledBy: actor.ID,
			CancelledAt: now,
			PriorStatus: prior.String(),
		}

	case domainwf.ActionRevoke:
		req.Reason = strings.TrimSpace(p.reason)
		req.Metadata.Revocation = &entity.RevocationRecord{
			Reason:      req.Reason,
			RevokedBy:   actor.ID,
			RevokedAt:   now,
			PriorStatus: prior.String(),
		}
	}

	req.UpdatedAt = now
	return nil
}
