package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/openmuni/casework/internal/application/dispatcher"
	"github.com/openmuni/casework/internal/domain/event"
)

type captureSink struct {
	mu       sync.Mutex
	subjects []string
	bodies   []string
}

func (s *captureSink) Send(ctx context.Context, recipient, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects = append(s.subjects, subject)
	s.bodies = append(s.bodies, body)
	return nil
}

func TestNotificationService_StatusChanged(t *testing.T) {
	sink := &captureSink{}
	d := dispatcher.NewDispatcher()
	defer d.Close()

	svc := NewNotificationService(sink, "intake@example.org", &mockLogger{})
	svc.Register(d)

	evt := event.NewEvent(event.TypeStatusChanged, 7, map[string]interface{}{
		"previous_status": "SUBMITTED",
		"new_status":      "UNDER_REVIEW",
		"action":          "START_REVIEW",
		"actor_user_id":   "coord-1",
	})

	if err := d.Dispatch(context.Background(), evt); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(sink.subjects) != 1 {
		t.Fatalf("sink received %d notifications, want 1", len(sink.subjects))
	}
	if !strings.Contains(sink.bodies[0], "SUBMITTED") || !strings.Contains(sink.bodies[0], "UNDER_REVIEW") {
		t.Errorf("notification body = %q", sink.bodies[0])
	}
}

func TestNotificationService_StatusChanged_FastTrackFlagged(t *testing.T) {
	sink := &captureSink{}
	d := dispatcher.NewDispatcher()
	defer d.Close()

	svc := NewNotificationService(sink, "intake@example.org", &mockLogger{})
	svc.Register(d)

	evt := event.NewEvent(event.TypeStatusChanged, 7, map[string]interface{}{
		"previous_status": "SUBMITTED",
		"new_status":      "APPROVED_PRELIM",
		"action":          "FAST_TRACK_APPROVE",
		"actor_user_id":   "coord-1",
		"fast_track":      true,
	})

	if err := d.Dispatch(context.Background(), evt); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(sink.subjects) != 1 {
		t.Fatalf("sink received %d notifications, want 1", len(sink.subjects))
	}
	if !strings.Contains(sink.subjects[0], "(fast track)") {
		t.Errorf("subject = %q, want fast-track marker", sink.subjects[0])
	}
}

func TestNotificationService_BenefitEvents(t *testing.T) {
	sink := &captureSink{}
	d := dispatcher.NewDispatcher()
	defer d.Close()

	svc := NewNotificationService(sink, "intake@example.org", &mockLogger{})
	svc.Register(d)

	activated := event.NewEvent(event.TypeBenefitActivated, 7, map[string]interface{}{
		"benefit_id": int64(100),
	})
	deactivated := event.NewEvent(event.TypeBenefitDeactivated, 7, map[string]interface{}{
		"benefit_id": int64(100),
	})

	if err := d.Dispatch(context.Background(), activated); err != nil {
		t.Fatalf("Dispatch(activated) error = %v", err)
	}
	if err := d.Dispatch(context.Background(), deactivated); err != nil {
		t.Fatalf("Dispatch(deactivated) error = %v", err)
	}

	if len(sink.subjects) != 2 {
		t.Fatalf("sink received %d notifications, want 2", len(sink.subjects))
	}
	if !strings.Contains(sink.subjects[0], "activated") {
		t.Errorf("subject = %q", sink.subjects[0])
	}
	if !strings.Contains(sink.subjects[1], "deactivated") {
		t.Errorf("subject = %q", sink.subjects[1])
	}
}

func TestNotificationService_UnrelatedEventIgnored(t *testing.T) {
	sink := &captureSink{}
	d := dispatcher.NewDispatcher()
	defer d.Close()

	svc := NewNotificationService(sink, "intake@example.org", &mockLogger{})
	svc.Register(d)

	// No handler subscribed for this type after unsubscription
	d.Unsubscribe(event.TypeRequestCreated, "notify-request-created")

	evt := event.NewEvent(event.TypeRequestCreated, 7, nil)
	if err := d.Dispatch(context.Background(), evt); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(sink.subjects) != 0 {
		t.Errorf("sink received %d notifications, want 0", len(sink.subjects))
	}
}
