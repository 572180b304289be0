package notifications

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medreportai/companion/internal/domain/providers"
	"github.com/medreportai/companion/pkg/retry"
)

// ReliableSender wraps a NotificationSender with exponential backoff.
// Booking confirmations are worth a few attempts before the failure is
// surfaced to the transaction.
type ReliableSender struct {
	inner providers.NotificationSender
	cfg   retry.Config
}

// NewReliableSender wraps a sender with the default retry policy
func NewReliableSender(inner providers.NotificationSender) *ReliableSender {
	return &ReliableSender{
		inner: inner,
		cfg: retry.Config{
			MaxAttempts:     3,
			InitialDelay:    500 * time.Millisecond,
			MaxDelay:        5 * time.Second,
			BackoffFactor:   2.0,
			MaxTotalTimeout: 20 * time.Second,
		},
	}
}

// Send dispatches the payload, retrying transient failures
func (s *ReliableSender) Send(ctx context.Context, payload map[string]string) (string, error) {
	var response string
	err := retry.Do(ctx, s.cfg, func() error {
		var sendErr error
		response, sendErr = s.inner.Send(ctx, payload)
		return sendErr
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Err(err).
			Msg("notification dispatch failed, retrying")
	})
	return response, err
}

var _ providers.NotificationSender = (*ReliableSender)(nil)
