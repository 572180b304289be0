package notifications

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/medreportai/companion/internal/domain/providers"
)

// LogSender records notifications to the log instead of dispatching
// them. Used when no notification service is configured so bookings
// still complete in development.
type LogSender struct{}

// NewLogSender creates a log-only sender
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send logs the payload and reports success
func (s *LogSender) Send(ctx context.Context, payload map[string]string) (string, error) {
	event := log.Info()
	for key, value := range payload {
		event = event.Str(key, value)
	}
	event.Msg("notification (log only)")
	return "logged", nil
}

var _ providers.NotificationSender = (*LogSender)(nil)
