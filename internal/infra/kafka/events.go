package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
	"github.com/burakzaferozcan/Vaultify/internal/core/port"
	"github.com/burakzaferozcan/Vaultify/internal/infra/config"
)

const (
	schemaVersion          = "1.0"
	activityRecordedEvent  = "vault.activity.recorded"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	OwnerID   string            `json:"owner_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// PublishActivityRecorded publishes vault.activity.recorded events.
// The audit entry itself is already durable in the store; the bus copy is
// fire-and-forget for downstream consumers.
func (p *EventPublisher) PublishActivityRecorded(ctx context.Context, event domain.ActivityRecordedEvent) error {
	id := event.EventID
	if id == "" {
		id = uuid.NewString()
	}
	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: activityRecordedEvent,
		OwnerID:   event.OwnerID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   event,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(activityRecordedEvent),
		Key:   sarama.StringEncoder(event.OwnerID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ port.EventPublisher = (*EventPublisher)(nil)
