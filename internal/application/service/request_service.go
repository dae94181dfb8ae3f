package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openmuni/casework/internal/application/dispatcher"
	"github.com/openmuni/casework/internal/application/port"
	"github.com/openmuni/casework/internal/domain/entity"
	"github.com/openmuni/casework/internal/domain/event"
	"github.com/openmuni/casework/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// CreateDraftInput carries the fields for a new draft approval request
type CreateDraftInput struct {
	CaseID    int64  `json:"case_id"`
	BenefitID *int64 `json:"benefit_id,omitempty"`
	FamilyID  *int64 `json:"family_id,omitempty"`
	PersonID  *int64 `json:"person_id,omitempty"`
}

// RequestService covers the non-transition lifecycle of approval requests:
// draft creation and reads. All state changes go through the workflow service.
type RequestService interface {
	CreateDraft(ctx context.Context, input CreateDraftInput, actor *entity.User) (*entity.ApprovalRequest, error)
	GetRequest(ctx context.Context, id int64) (*entity.ApprovalRequest, error)
	ListByCase(ctx context.Context, caseID int64, limit, offset int) ([]*entity.ApprovalRequest, error)
	GetHistory(ctx context.Context, requestID int64) ([]*entity.AuditRecord, error)
}

type requestServiceImpl struct {
	requests   port.RequestRepository
	cases      port.CaseRepository
	benefits   port.BenefitRepository
	audits     port.AuditRepository
	txManager  port.TransactionManager
	dispatcher dispatcher.Dispatcher
	logger     Logger
}

// RequestServiceOption configures the request service
type RequestServiceOption func(*requestServiceImpl)

// WithDispatcher sets the event dispatcher for created-request events
func WithDispatcher(d dispatcher.Dispatcher) RequestServiceOption {
	return func(s *requestServiceImpl) {
		s.dispatcher = d
	}
}

// NewRequestService creates a new RequestService
func NewRequestService(
	requests port.RequestRepository,
	cases port.CaseRepository,
	benefits port.BenefitRepository,
	audits port.AuditRepository,
	txManager port.TransactionManager,
	logger Logger,
	opts ...RequestServiceOption,
) RequestService {
	s := &requestServiceImpl{
		requests:  requests,
		cases:     cases,
		benefits:  benefits,
		audits:    audits,
		txManager: txManager,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDraft creates a new approval request in DRAFT state. The case reference
// is validated here and immutable afterwards; a linked benefit must belong to
// the same case.
func (s *requestServiceImpl) CreateDraft(ctx context.Context, input CreateDraftInput, actor *entity.User) (*entity.ApprovalRequest, error) {
	if input.CaseID == 0 {
		return nil, workflow.NewValidation("case_id", "required")
	}
	if actor == nil || !actor.CanSubmit() {
		return nil, workflow.NewUnauthorized("CREATE_DRAFT", "requires social worker or admin")
	}

	c, err := s.cases.GetByID(ctx, input.CaseID)
	if err != nil {
		return nil, fmt.Errorf("load case %d: %w", input.CaseID, err)
	}
	if c == nil {
		return nil, workflow.NewValidation("case_id", fmt.Sprintf("case %d does not exist", input.CaseID))
	}

	if input.BenefitID != nil {
		b, err := s.benefits.GetByID(ctx, *input.BenefitID)
		if err != nil {
			return nil, fmt.Errorf("load benefit %d: %w", *input.BenefitID, err)
		}
		if b == nil {
			return nil, workflow.NewValidation("benefit_id", fmt.Sprintf("benefit %d does not exist", *input.BenefitID))
		}
		if b.CaseID != input.CaseID {
			return nil, workflow.NewValidation("benefit_id", "benefit belongs to a different case")
		}
	}

	now := time.Now()
	req := &entity.ApprovalRequest{
		CaseID:    input.CaseID,
		BenefitID: input.BenefitID,
		FamilyID:  input.FamilyID,
		PersonID:  input.PersonID,
		Status:    workflow.StateDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		s.logger.Error("Failed to create draft request", "error", err, "case_id", input.CaseID)
		return nil, err
	}

	s.logger.Info("Draft request created", "id", req.ID, "case_id", req.CaseID, "actor", actor.ID)

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeRequestCreated, req.ID, map[string]interface{}{
			"case_id":       req.CaseID,
			"actor_user_id": actor.ID,
		}))
	}
	return req, nil
}

// GetRequest retrieves a request by ID
func (s *requestServiceImpl) GetRequest(ctx context.Context, id int64) (*entity.ApprovalRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get request", "error", err, "id", id)
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: request %d", ErrNotFound, id)
	}
	return req, nil
}

// ListByCase retrieves requests for a case, newest first
func (s *requestServiceImpl) ListByCase(ctx context.Context, caseID int64, limit, offset int) ([]*entity.ApprovalRequest, error) {
	reqs, err := s.requests.ListByCase(ctx, caseID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list requests", "error", err, "case_id", caseID)
		return nil, err
	}
	return reqs, nil
}

// GetHistory retrieves the audit trail for a request, oldest first
func (s *requestServiceImpl) GetHistory(ctx context.Context, requestID int64) ([]*entity.AuditRecord, error) {
	records, err := s.audits.ListByRequest(ctx, requestID)
	if err != nil {
		s.logger.Error("Failed to get request history", "error", err, "request_id", requestID)
		return nil, err
	}
	return records, nil
}
