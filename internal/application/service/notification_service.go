package service

import (
	"context"
	"fmt"

	"github.com/openmuni/casework/internal/application/dispatcher"
	"github.com/openmuni/casework/internal/domain/event"
)

// NotificationSink delivers a notification message. Delivery is fire-and-forget
// from the workflow's perspective; failures are logged, never surfaced to the
// transition that triggered them.
type NotificationSink interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// NotificationService subscribes to workflow events and pushes
// status-change notifications to the configured sink
type NotificationService struct {
	sink      NotificationSink
	recipient string
	logger    Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(sink NotificationSink, recipient string, logger Logger) *NotificationService {
	return &NotificationService{
		sink:      sink,
		recipient: recipient,
		logger:    logger,
	}
}

// Register subscribes the service's handlers on the dispatcher
func (s *NotificationService) Register(d dispatcher.Dispatcher) {
	d.SubscribeNamed(event.TypeRequestCreated, "notify-request-created", s.handleRequestCreated)
	d.SubscribeNamed(event.TypeStatusChanged, "notify-status-changed", s.handleStatusChanged)
	d.SubscribeNamed(event.TypeDocumentsRequested, "notify-documents-requested", s.handleDocumentsRequested)
	d.SubscribeNamed(event.TypeBenefitActivated, "notify-benefit-activated", s.handleBenefitActivated)
	d.SubscribeNamed(event.TypeBenefitDeactivated, "notify-benefit-deactivated", s.handleBenefitDeactivated)
}

func (s *NotificationService) handleRequestCreated(ctx context.Context, evt *event.Event) error {
	subject := fmt.Sprintf("Request %d created", evt.RequestID)
	body := fmt.Sprintf("Approval request %d was drafted on case %d by %s.",
		evt.RequestID,
		evt.GetPayloadInt("case_id"),
		evt.GetPayloadString("actor_user_id"),
	)
	return s.deliver(ctx, subject, body)
}

func (s *NotificationService) handleDocumentsRequested(ctx context.Context, evt *event.Event) error {
	subject := fmt.Sprintf("Request %d: documents requested", evt.RequestID)
	body := fmt.Sprintf("Additional documents were requested on approval request %d by %s.",
		evt.RequestID,
		evt.GetPayloadString("actor_user_id"),
	)
	return s.deliver(ctx, subject, body)
}

func (s *NotificationService) handleStatusChanged(ctx context.Context, evt *event.Event) error {
	subject := fmt.Sprintf("Request %d: %s", evt.RequestID, evt.GetPayloadString("new_status"))
	if evt.GetPayloadBool("fast_track") {
		subject += " (fast track)"
	}
	body := fmt.Sprintf("Approval request %d moved from %s to %s (action %s by %s).",
		evt.RequestID,
		evt.GetPayloadString("previous_status"),
		evt.GetPayloadString("new_status"),
		evt.GetPayloadString("action"),
		evt.GetPayloadString("actor_user_id"),
	)
	return s.deliver(ctx, subject, body)
}

func (s *NotificationService) handleBenefitActivated(ctx context.Context, evt *event.Event) error {
	subject := fmt.Sprintf("Benefit %d activated", evt.GetPayloadInt("benefit_id"))
	body := fmt.Sprintf("Benefit %d was activated by approval request %d.",
		evt.GetPayloadInt("benefit_id"), evt.RequestID)
	return s.deliver(ctx, subject, body)
}

func (s *NotificationService) handleBenefitDeactivated(ctx context.Context, evt *event.Event) error {
	subject := fmt.Sprintf("Benefit %d deactivated", evt.GetPayloadInt("benefit_id"))
	body := fmt.Sprintf("Benefit %d was deactivated by revocation of approval request %d.",
		evt.GetPayloadInt("benefit_id"), evt.RequestID)
	return s.deliver(ctx, subject, body)
}

func (s *NotificationService) deliver(ctx context.Context, subject, body string) error {
	if err := s.sink.Send(ctx, s.recipient, subject, body); err != nil {
		s.logger.Error("Notification delivery failed", "error", err, "subject", subject)
		return err
	}
	s.logger.Info("Notification sent", "subject", subject, "recipient", s.recipient)
	return nil
}
