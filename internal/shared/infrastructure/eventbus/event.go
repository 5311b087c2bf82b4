// Package eventbus carries outbox envelopes from the outbox processor to
// subscribers, either through RabbitMQ or, in local mode, in process.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExchangeName is the topic exchange every domain event is published to.
const ExchangeName = "nudge.domain.events"

// Publisher sends an encoded envelope under a routing key such as
// "core.task.completed".
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// EventConsumer is a subscriber for a fixed set of routing keys.
type EventConsumer interface {
	EventTypes() []string
	Handle(ctx context.Context, event *ConsumedEvent) error
}

// ConsumedEvent is an outbox envelope as a subscriber sees it. Payload
// holds the event's own fields.
type ConsumedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"data"`
	Metadata      EventMetadata   `json:"metadata,omitempty"`
}

// EventMetadata identifies who caused the event.
type EventMetadata struct {
	UserID        string `json:"user_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	CausationID   string `json:"causation_id,omitempty"`
}

// NewConsumedEvent builds an envelope for a task event raised by userID.
func NewConsumedEvent(eventID uuid.UUID, taskID, aggregateType, routingKey string, payload json.RawMessage, userID string) *ConsumedEvent {
	return &ConsumedEvent{
		EventID:       eventID,
		AggregateID:   taskID,
		AggregateType: aggregateType,
		RoutingKey:    routingKey,
		OccurredAt:    time.Now(),
		Payload:       payload,
		Metadata:      EventMetadata{UserID: userID},
	}
}

// Decode unmarshals the event's own fields into v.
func (e *ConsumedEvent) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// decodeEnvelope parses a published body. The transport's routing key is
// used when the envelope does not carry one.
func decodeEnvelope(body []byte, routingKey string) (*ConsumedEvent, error) {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(body, event); err != nil {
		return nil, fmt.Errorf("decode %s envelope: %w", routingKey, err)
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}
	return event, nil
}
