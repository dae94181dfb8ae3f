package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openmuni/casework/internal/application/port"
	"github.com/openmuni/casework/internal/domain/entity"
	"github.com/openmuni/casework/internal/domain/workflow"
	"github.com/openmuni/casework/pkg/utils"
)

// CreateBenefitInput carries the fields for a new benefit record
type CreateBenefitInput struct {
	CaseID      int64  `json:"case_id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	AmountCents int64  `json:"amount_cents"`
}

// BenefitService manages benefit records. Activation state is owned by the
// workflow's side-effect orchestrator and is not writable here.
type BenefitService interface {
	CreateBenefit(ctx context.Context, input CreateBenefitInput) (*entity.Benefit, error)
	GetBenefit(ctx context.Context, id int64) (*entity.Benefit, error)
	ListByCase(ctx context.Context, caseID int64) ([]*entity.Benefit, error)
}

type benefitServiceImpl struct {
	benefits port.BenefitRepository
	cases    port.CaseRepository
	logger   Logger
}

// NewBenefitService creates a new BenefitService
func NewBenefitService(benefits port.BenefitRepository, cases port.CaseRepository, logger Logger) BenefitService {
	return &benefitServiceImpl{benefits: benefits, cases: cases, logger: logger}
}

// CreateBenefit creates an inactive benefit on an existing case
func (s *benefitServiceImpl) CreateBenefit(ctx context.Context, input CreateBenefitInput) (*entity.Benefit, error) {
	if input.CaseID == 0 {
		return nil, workflow.NewValidation("case_id", "required")
	}
	if strings.TrimSpace(input.Type) == "" {
		return nil, workflow.NewValidation("type", "required")
	}
	if err := utils.ValidateAmountCents(input.AmountCents); err != nil {
		return nil, workflow.NewValidation("amount_cents", err.Error())
	}

	c, err := s.cases.GetByID(ctx, input.CaseID)
	if err != nil {
		return nil, fmt.Errorf("load case %d: %w", input.CaseID, err)
	}
	if c == nil {
		return nil, workflow.NewValidation("case_id", fmt.Sprintf("case %d does not exist", input.CaseID))
	}

	now := time.Now()
	b := &entity.Benefit{
		CaseID:      input.CaseID,
		Type:        strings.ToUpper(strings.TrimSpace(input.Type)),
		Description: input.Description,
		AmountCents: input.AmountCents,
		IsActive:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.benefits.Create(ctx, b); err != nil {
		s.logger.Error("Failed to create benefit", "error", err, "case_id", input.CaseID)
		return nil, err
	}

	s.logger.Info("Benefit created", "id", b.ID, "case_id", b.CaseID, "type", b.Type)
	return b, nil
}

// GetBenefit retrieves a benefit by ID
func (s *benefitServiceImpl) GetBenefit(ctx context.Context, id int64) (*entity.Benefit, error) {
	b, err := s.benefits.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get benefit", "error", err, "id", id)
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: benefit %d", ErrNotFound, id)
	}
	return b, nil
}

// ListByCase retrieves all benefits for a case
func (s *benefitServiceImpl) ListByCase(ctx context.Context, caseID int64) ([]*entity.Benefit, error) {
	benefits, err := s.benefits.ListByCase(ctx, caseID)
	if err != nil {
		s.logger.Error("Failed to list benefits", "error", err, "case_id", caseID)
		return nil, err
	}
	return benefits, nil
}
