package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openmuni/casework/internal/application/dispatcher"
	"github.com/openmuni/casework/internal/application/port"
	"github.com/openmuni/casework/internal/domain/entity"
	"github.com/openmuni/casework/internal/domain/event"
	domainwf "github.com/openmuni/casework/internal/domain/workflow"
)

// ErrNotFound is returned when the approval request does not exist
var ErrNotFound = errors.New("approval request not found")

// DefaultMinJustificationLen is the minimum fast-track justification length
// when no explicit value is configured
const DefaultMinJustificationLen = 20

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Service exposes the workflow actions. Each action runs its guard evaluation,
// mutation, side effects, and audit write as one atomic unit and returns the
// updated aggregate, or a typed error with zero partial state.
type Service interface {
	Submit(ctx context.Context, requestID int64, actor *entity.User) (*entity.ApprovalRequest, error)
	StartReview(ctx context.Context, requestID int64, actor *entity.User) (*entity.ApprovalRequest, error)
	Approve(ctx context.Context, requestID int64, actor *entity.User) (*entity.ApprovalRequest, error)
	Reject(ctx context.Context, requestID int64, actor *entity.User, reason string) (*entity.ApprovalRequest, error)
	RequestDocuments(ctx context.Context, requestID int64, actor *entity.User, documents []string) (*entity.ApprovalRequest, error)
	Resubmit(ctx context.Context, requestID int64, actor *entity.User, documentsProvided []string) (*entity.ApprovalRequest, error)
	FastTrackApprove(ctx context.Context, requestID int64, actor *entity.User, justification string) (*entity.ApprovalRequest, error)
	Cancel(ctx context.Context, requestID int64, actor *entity.User, reason string) (*entity.ApprovalRequest, error)
	Revoke(ctx context.Context, requestID int64, actor *entity.User, reason string) (*entity.ApprovalRequest, error)

	// ConfirmFastTrack promotes a provisional fast-track approval to a full one,
	// consuming the requires_confirmation flag.
	ConfirmFastTrack(ctx context.Context, requestID int64, actor *entity.User) (*entity.ApprovalRequest, error)

	// Expire moves a stale request to EXPIRED. Fired by the expiry sweep, not
	// exposed over the API.
	Expire(ctx context.Context, requestID int64, actor *entity.User) (*entity.ApprovalRequest, error)
}

// payload carries the action-specific inputs through the transition pipeline
type payload struct {
	reason            string
	documents         []string
	documentsProvided []string
	justification     string
}

type serviceImpl struct {
	requests   port.RequestRepository
	benefits   port.BenefitRepository
	audits     port.AuditRepository
	txManager  port.TransactionManager
	dispatcher dispatcher.Dispatcher
	logger     Logger

	now              func() time.Time
	minJustification int
}

// Option configures the workflow service
type Option func(*serviceImpl)

// WithDispatcher sets the event dispatcher for post-commit events
func WithDispatcher(d dispatcher.Dispatcher) Option {
	return func(s *serviceImpl) {
		s.dispatcher = d
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) {
		s.now = now
	}
}

// WithMinJustificationLen sets the fast-track justification minimum length
func WithMinJustificationLen(n int) Option {
	return func(s *serviceImpl) {
		if n > 0 {
			s.minJustification = n
		}
	}
}

// NewService creates a new workflow service
func NewService(
	requests port.RequestRepository,
	benefits port.BenefitRepository,
	audits port.AuditRepository,
	txManager port.TransactionManager,
	logger Logger,
	opts ...Option,
) Service {
	s := &serviceImpl{
		requests:         requests,
		benefits:         benefits,
		audits:           audits,
		txManager:        txManager,
		logger:           logger,
		now:              time.Now,
		minJustification: DefaultMinJustificationLen,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *serviceImpl) Submit(ctx context.Context, requestID int64, actor *entity.User) (*entity.ApprovalRequest, error) {
	return s.transition(ctx, requestID, actor, domainwf.ActionSubmit, payload{})
}

func (s *serviceImpl) StartReview(ctx context.Context, requestID int64, actor *entity.User) (*entity.ApprovalRequest, error) {
	return s.transition(ctx, requestID, actor, domainwf.ActionStartReview, payload{})
}

func (s *serviceImpl) Approve(ctx context.Context, requestID int64, actor *entity.User) (*entity.ApprovalRequest, error) {
	return s.transition(ctx, requestID, actor, domainwf.ActionApprove, payload{})
}

func (s *serviceImpl) Reject(ctx context.Context, requestID int64, actor *entity.User, reason string) (*entity.ApprovalRequest, error) {
	return s.transition(ctx, requestID, actor, domainwf.ActionReject, payload{reason: reason})
}

func (s *serviceImpl) RequestDocuments(ctx context.Context, requestID int64, actor *entity.User, documents []string) (*entity.ApprovalRequest, error) {
	return s.transition(ctx, requestID, actor, domainwf.ActionRequestDocuments, payload{documents: documents})
}

func (s *serviceImpl) Resubmit(ctx context.Context, requestID int64, actor *entity.User, documentsProvided []string) (*entity.ApprovalRequest, error) {
	return s.transition(ctx, requestID, actor, domainwf.ActionResubmit, payload{documentsProvided: documentsProvided})
}

func (s *serviceImpl) FastTrackApprove(ctx context.Context, requestID int64, actor *entity.User, justification string) (*entity.ApprovalRequest, error) {
	return s.transition(ctx, requestID, actor, domainwf.ActionFastTrackApprove, payload{justification: justification})
}

func (s *serviceImpl) Cancel(ctx context.Context, requestID int64, actor *entity.User, reason string) (*entity.ApprovalRequest, error) {
	return s.transition(ctx, requestID, actor, domainwf.ActionCancel, payload{reason: reason})
}

func (s *serviceImpl) Revoke(ctx context.Context, requestID int64, actor *entity.User, reason string) (*entity.ApprovalRequest, error) {
	return s.transition(ctx, requestID, actor, domainwf.ActionRevoke, payload{reason: reason})
}

func (s *serviceImpl) ConfirmFastTrack(ctx context.Context, requestID int64, actor *entity.User) (*entity.ApprovalRequest, error) {
	return s.transition(ctx, requestID, actor, domainwf.ActionConfirmFastTrack, payload{})
}

func (s *serviceImpl) Expire(ctx context.Context, requestID int64, actor *entity.User) (*entity.ApprovalRequest, error) {
	return s.transition(ctx, requestID, actor, domainwf.ActionExpire, payload{})
}

// transition runs the shared pipeline: load the aggregate inside an immediate
// write transaction, evaluate guards in order (state, role, payload), apply the
// mutation to a copy, persist, run side effects, append the audit record. Any
// failure rolls the whole unit back.
func (s *serviceImpl) transition(ctx context.Context, requestID int64, actor *entity.User, action domainwf.Action, p payload) (*entity.ApprovalRequest, error) {
	if actor == nil {
		return nil, domainwf.NewUnauthorized(action, "no acting user")
	}

	var (
		updated  *entity.ApprovalRequest
		previous domainwf.State
	)

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.requests.GetByID(txCtx, requestID)
		if err != nil {
			return fmt.Errorf("load request %d: %w", requestID, err)
		}
		if req == nil {
			return fmt.Errorf("%w: id %d", ErrNotFound, requestID)
		}
		previous = req.Status

		if err := checkState(req, action); err != nil {
			return err
		}
		if err := checkRole(req, actor, action); err != nil {
			return err
		}
		if err := s.checkPayload(txCtx, req, action, p); err != nil {
			return err
		}

		now := s.now()
		next := req.Clone()
		if err := applyTransition(next, actor, action, p, now); err != nil {
			return err
		}

		if err := s.requests.Update(txCtx, next); err != nil {
			return fmt.Errorf("persist request %d: %w", requestID, err)
		}
		if err := s.applySideEffects(txCtx, next, action, now); err != nil {
			return err
		}
		if err := s.writeAudit(txCtx, next, actor, action, p, previous, now); err != nil {
			return err
		}

		updated = next
		return nil
	})

	if err != nil {
		s.logger.Error("Transition failed",
			"request_id", requestID,
			"action", action.String(),
			"actor", actor.ID,
			"error", err)
		return nil, err
	}

	s.logger.Info("Transition applied",
		"request_id", requestID,
		"action", action.String(),
		"actor", actor.ID,
		"previous_status", previous.String(),
		"new_status", updated.Status.String())

	s.emitEvents(ctx, updated, actor, action, previous)
	return updated, nil
}

// writeAudit appends the audit record for a successful transition, inside the
// same transaction
func (s *serviceImpl) writeAudit(ctx context.Context, req *entity.ApprovalRequest, actor *entity.User, action domainwf.Action, p payload, previous domainwf.State, now time.Time) error {
	props := auditProperties(action, p)

	var propsJSON string
	if len(props) > 0 {
		raw, err := json.Marshal(props)
		if err != nil {
			return fmt.Errorf("marshal audit properties: %w", err)
		}
		propsJSON = string(raw)
	}

	record := &entity.AuditRecord{
		ID:             uuid.NewString(),
		RequestID:      req.ID,
		ActorUserID:    actor.ID,
		Action:         action.String(),
		PreviousStatus: previous.String(),
		NewStatus:      req.Status.String(),
		Properties:     propsJSON,
		CreatedAt:      now,
	}

	if err := s.audits.Create(ctx, record); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// auditProperties collects the action-specific facts recorded on the audit trail
func auditProperties(action domainwf.Action, p payload) map[string]interface{} {
	props := make(map[string]interface{})
	switch action {
	case domainwf.ActionReject, domainwf.ActionCancel, domainwf.ActionRevoke:
		props["reason"] = p.reason
	case domainwf.ActionRequestDocuments:
		props["documents"] = p.documents
	case domainwf.ActionResubmit:
		if len(p.documentsProvided) > 0 {
			props["documents_provided"] = p.documentsProvided
		}
	case domainwf.ActionFastTrackApprove:
		props["justification"] = p.justification
		props["emergency_approval"] = true
		props["requires_confirmation"] = true
	}
	return props
}

// emitEvents dispatches post-commit events, fire-and-forget
func (s *serviceImpl) emitEvents(ctx context.Context, req *entity.ApprovalRequest, actor *entity.User, action domainwf.Action, previous domainwf.State) {
	if s.dispatcher == nil {
		return
	}

	statusPayload := map[string]interface{}{
		"previous_status": previous.String(),
		"new_status":      req.Status.String(),
		"action":          action.String(),
		"actor_user_id":   actor.ID,
	}
	if action == domainwf.ActionFastTrackApprove {
		statusPayload["fast_track"] = true
	}
	statusEvent := event.NewEvent(event.TypeStatusChanged, req.ID, statusPayload)
	s.dispatcher.DispatchAsync(ctx, statusEvent)

	if action == domainwf.ActionRequestDocuments {
		s.dispatcher.DispatchAsync(ctx, event.NewEventWithCorrelation(
			event.TypeDocumentsRequested, req.ID,
			map[string]interface{}{
				"documents":     req.Metadata.DocumentsRequested,
				"actor_user_id": actor.ID,
			},
			statusEvent.CorrelationID))
	}

	if !req.HasBenefit() {
		return
	}
	switch action {
	case domainwf.ActionApprove, domainwf.ActionFastTrackApprove:
		s.dispatcher.DispatchAsync(ctx, event.NewEventWithCorrelation(
			event.TypeBenefitActivated, req.ID,
			map[string]interface{}{"benefit_id": *req.BenefitID},
			statusEvent.CorrelationID))
	case domainwf.ActionRevoke:
		s.dispatcher.DispatchAsync(ctx, event.NewEventWithCorrelation(
			event.TypeBenefitDeactivated, req.ID,
			map[string]interface{}{"benefit_id": *req.BenefitID},
			statusEvent.CorrelationID))
	}
}
