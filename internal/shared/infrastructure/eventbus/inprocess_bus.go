package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// InProcessBus is the local-mode Publisher: the outbox processor publishes
// straight into the subscribers of the same process.
type InProcessBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewInProcessBus creates a bus with no subscribers.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// Register subscribes consumer.
func (b *InProcessBus) Register(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Registry exposes the subscriptions.
func (b *InProcessBus) Registry() *ConsumerRegistry {
	return b.registry
}

// Publish dispatches synchronously and one envelope at a time. Malformed
// envelopes and subscriber failures are logged and the publish still
// succeeds, so the outbox never redelivers a local event.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event, err := decodeEnvelope(payload, routingKey)
	if err != nil {
		b.logger.Error("dropping malformed envelope", "routing_key", routingKey, "error", err)
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	if err := b.registry.Dispatch(ctx, event); err != nil {
		b.logger.Warn("subscriber failed",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"error", err,
		)
		return nil
	}
	b.logger.Debug("event dispatched",
		"routing_key", event.RoutingKey,
		"event_id", event.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close is a no-op.
func (b *InProcessBus) Close() error {
	return nil
}
