package docstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker around a Store.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	HalfOpenRequests uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
}

// DefaultBreakerConfig returns the breaker defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "docstore",
		FailureThreshold: 5,
		HalfOpenRequests: 1,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
	}
}

// BreakerStore guards a Store with a circuit breaker. Only connectivity
// failures count against the breaker; while it is open every call fails
// fast with a connectivity Failure.
type BreakerStore struct {
	next    Store
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps next.
func NewBreakerStore(next Store, cfg BreakerConfig, logger *slog.Logger) *BreakerStore {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || KindOf(err) != KindConnectivity
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("document store circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &BreakerStore{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// State reports the breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.breaker.State()
}

func (b *BreakerStore) run(op, collection, id string, fn func() (any, error)) (any, error) {
	result, err := b.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, failure(KindConnectivity, op, collection, id, err)
	}
	return result, err
}

// CreateOrReplace writes the whole document.
func (b *BreakerStore) CreateOrReplace(ctx context.Context, collection, id string, fields Fields) error {
	_, err := b.run("create", collection, id, func() (any, error) {
		return nil, b.next.CreateOrReplace(ctx, collection, id, fields)
	})
	return err
}

// Patch merges fields into an existing document.
func (b *BreakerStore) Patch(ctx context.Context, collection, id string, fields Fields) error {
	_, err := b.run("patch", collection, id, func() (any, error) {
		return nil, b.next.Patch(ctx, collection, id, fields)
	})
	return err
}

// Remove deletes a document.
func (b *BreakerStore) Remove(ctx context.Context, collection, id string) error {
	_, err := b.run("remove", collection, id, func() (any, error) {
		return nil, b.next.Remove(ctx, collection, id)
	})
	return err
}

// Get reads one document.
func (b *BreakerStore) Get(ctx context.Context, collection, id string) (Fields, error) {
	result, err := b.run("get", collection, id, func() (any, error) {
		return b.next.Get(ctx, collection, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(Fields), nil
}

// QueryOrdered returns documents ordered by sortField.
func (b *BreakerStore) QueryOrdered(ctx context.Context, collection, sortField string, dir Direction, limit int) ([]Document, error) {
	result, err := b.run("query", collection, "", func() (any, error) {
		return b.next.QueryOrdered(ctx, collection, sortField, dir, limit)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Document), nil
}
