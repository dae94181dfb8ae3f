package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes notifications to the structured log. It stands in for an
// outbound mail or messaging integration; the delivery channel is behind the
// NotificationSink interface so swapping it in is a wiring change only.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a new LogSink
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Send logs the notification
func (s *LogSink) Send(ctx context.Context, recipient, subject, body string) error {
	s.logger.Info("Notification",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}
