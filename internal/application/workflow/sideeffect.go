package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/openmuni/casework/internal/domain/entity"
	domainwf "github.com/openmuni/casework/internal/domain/workflow"
)

// applySideEffects runs the benefit activation side effect implied by the
// transition, inside the same transaction as the state mutation. Approve and
// FastTrackApprove activate the linked benefit; Revoke deactivates it. No other
// transition touches the benefit, and a missing link is not an error; the
// effect is conditional and silently skipped. ConfirmFastTrack runs no effect:
// the benefit was already activated at fast-track time.
func (s *serviceImpl) applySideEffects(ctx context.Context, req *entity.ApprovalRequest, action domainwf.Action, now time.Time) error {
	if !req.HasBenefit() {
		return nil
	}

	switch action {
	case domainwf.ActionApprove, domainwf.ActionFastTrackApprove:
		if err := s.benefits.Activate(ctx, *req.BenefitID, now); err != nil {
			return fmt.Errorf("activate benefit %d: %w", *req.BenefitID, err)
		}
	case domainwf.ActionRevoke:
		if err := s.benefits.Deactivate(ctx, *req.BenefitID, now); err != nil {
			return fmt.Errorf("deactivate benefit %d: %w", *req.BenefitID, err)
		}
	}
	return nil
}
