package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

// PublishActivityRecorded logs vault.activity.recorded events.
func (p *StubPublisher) PublishActivityRecorded(_ context.Context, event domain.ActivityRecordedEvent) error {
	p.logger.Debug("stub event published",
		zap.String("event_type", activityRecordedEvent),
		zap.String("owner_id", event.OwnerID),
		zap.String("action", string(event.Action)),
		zap.String("resource_type", string(event.ResourceType)),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
