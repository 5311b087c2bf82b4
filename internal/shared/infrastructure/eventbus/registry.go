package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ConsumerRegistry routes envelopes to the subscribers of their routing key.
type ConsumerRegistry struct {
	mu        sync.RWMutex
	consumers map[string][]EventConsumer
	logger    *slog.Logger
}

// NewConsumerRegistry creates an empty registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{
		consumers: make(map[string][]EventConsumer),
		logger:    logger,
	}
}

// Register subscribes consumer to each of its event types.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range consumer.EventTypes() {
		r.consumers[key] = append(r.consumers[key], consumer)
	}
}

// RoutingKeys lists the keys with at least one subscriber, sorted.
func (r *ConsumerRegistry) RoutingKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.consumers))
	for k := range r.consumers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len counts subscriptions. A consumer with two event types counts twice.
func (r *ConsumerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, cs := range r.consumers {
		n += len(cs)
	}
	return n
}

// Dispatch hands event to every subscriber of its routing key. A failing
// subscriber does not stop the others; all failures are returned joined.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	r.mu.RLock()
	consumers := append([]EventConsumer(nil), r.consumers[event.RoutingKey]...)
	r.mu.RUnlock()

	if len(consumers) == 0 {
		r.logger.Debug("no subscribers", "routing_key", event.RoutingKey)
		return nil
	}

	var errs []error
	for i, c := range consumers {
		if err := c.Handle(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("subscriber %d for %s: %w", i, event.RoutingKey, err))
		}
	}
	return errors.Join(errs...)
}
