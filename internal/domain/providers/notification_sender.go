package providers

import (
	"context"
)

// NotificationSender dispatches a flat key/value notification payload
// to the selected specialist. Sequence-valued analysis fields must be
// flattened to delimited strings before dispatch.
type NotificationSender interface {
	Send(ctx context.Context, payload map[string]string) (string, error)
}
