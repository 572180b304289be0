package providers

import (
	"context"

	"github.com/medreportai/companion/internal/domain/entities"
)

// WorkflowChannel is the pub/sub channel carrying workflow events
const WorkflowChannel = "workflow:events"

// EventBus defines the interface for publishing and subscribing to
// workflow events. Subscriptions are released when the subscriber's
// context is cancelled.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.WorkflowEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.WorkflowEvent, error)

	// Close shuts down the bus and all subscriptions
	Close() error
}
