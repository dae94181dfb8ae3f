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

// CreateCaseInput carries the fields for a new case file
type CreateCaseInput struct {
	Number           string `json:"number"`
	FamilyID         *int64 `json:"family_id,omitempty"`
	PersonID         *int64 `json:"person_id,omitempty"`
	AssignedWorkerID string `json:"assigned_worker_id,omitempty"`
}

// CaseService manages case files
type CaseService interface {
	CreateCase(ctx context.Context, input CreateCaseInput) (*entity.Case, error)
	GetCase(ctx context.Context, id int64) (*entity.Case, error)
	ListCases(ctx context.Context, limit, offset int) ([]*entity.Case, error)
}

type caseServiceImpl struct {
	cases  port.CaseRepository
	logger Logger
}

// NewCaseService creates a new CaseService
func NewCaseService(cases port.CaseRepository, logger Logger) CaseService {
	return &caseServiceImpl{cases: cases, logger: logger}
}

// CreateCase creates a new open case file
func (s *caseServiceImpl) CreateCase(ctx context.Context, input CreateCaseInput) (*entity.Case, error) {
	number := strings.TrimSpace(input.Number)
	if number == "" {
		return nil, workflow.NewValidation("number", "required")
	}
	if err := utils.ValidateCaseNumber(number); err != nil {
		return nil, workflow.NewValidation("number", err.Error())
	}

	now := time.Now()
	c := &entity.Case{
		Number:           number,
		FamilyID:         input.FamilyID,
		PersonID:         input.PersonID,
		AssignedWorkerID: input.AssignedWorkerID,
		Status:           entity.CaseStatusOpen,
		OpenedAt:         now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.cases.Create(ctx, c); err != nil {
		s.logger.Error("Failed to create case", "error", err, "number", input.Number)
		return nil, err
	}

	s.logger.Info("Case created", "id", c.ID, "number", c.Number)
	return c, nil
}

// GetCase retrieves a case by ID
func (s *caseServiceImpl) GetCase(ctx context.Context, id int64) (*entity.Case, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get case", "error", err, "id", id)
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: case %d", ErrNotFound, id)
	}
	return c, nil
}

// ListCases retrieves cases, newest first
func (s *caseServiceImpl) ListCases(ctx context.Context, limit, offset int) ([]*entity.Case, error) {
	cases, err := s.cases.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list cases", "error", err)
		return nil, err
	}
	return cases, nil
}
