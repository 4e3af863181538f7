package port

import (
	"context"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishActivityRecorded(ctx context.Context, event domain.ActivityRecordedEvent) error
}
