package reminders

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/nudge/internal/shared/application"
	"github.com/felixgeelhaar/nudge/internal/shared/domain"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/nudge/pkg/observability"
)

// DefaultPollInterval is how often the dispatcher looks for due reminders.
const DefaultPollInterval = 15 * time.Second

// Dispatcher moves due reminders into the outbox as core.reminder.due events.
type Dispatcher struct {
	source  Source
	outbox  outbox.Repository
	clock   func() time.Time
	logger  *slog.Logger
	metrics observability.Metrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherClock overrides the clock.
func WithDispatcherClock(clock func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.clock = clock }
}

// WithDispatcherLogger sets the logger.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithDispatcherMetrics sets the metrics sink.
func WithDispatcherMetrics(m observability.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(source Source, repo outbox.Repository, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		source:  source,
		outbox:  repo,
		clock:   time.Now,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DispatchOnce records an event for every reminder due now and returns how
// many were recorded.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	now := d.clock()
	due, err := d.source.TakeDue(ctx, now)
	if err != nil && len(due) == 0 {
		return 0, err
	}
	if err != nil {
		d.logger.Warn("partial reminder claim", "claimed", len(due), "error", err)
	}

	msgs := make([]*outbox.Message, 0, len(due))
	for _, r := range due {
		event := task.NewReminderDue(r.TaskID, r.NotificationID, r.DueAt, now)
		sharedApplication.ApplyEventMetadata([]domain.DomainEvent{&event}, sharedApplication.NewEventMetadata(ctx, r.UserID))
		msg, err := outbox.NewMessage(&event)
		if err != nil {
			return 0, err
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	if err := d.outbox.SaveBatch(ctx, msgs); err != nil {
		return 0, err
	}
	d.metrics.Counter(observability.MetricRemindersFired, int64(len(msgs)))
	d.logger.Debug("reminders dispatched", "count", len(msgs))
	return len(msgs), nil
}

// Run dispatches on every tick until ctx is done.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := d.DispatchOnce(ctx); err != nil {
				d.logger.Error("failed to dispatch reminders", "error", err)
			}
		}
	}
}
