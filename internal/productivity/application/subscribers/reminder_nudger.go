package subscribers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/nudge/pkg/observability"
)

// Nudge is a reminder that should reach the user.
type Nudge struct {
	TaskID         string
	UserID         string
	Text           string
	NotificationID string
	DueAt          time.Time
}

// Notifier delivers a nudge.
type Notifier func(ctx context.Context, n Nudge)

type reminderDuePayload struct {
	NotificationID string    `json:"notification_id"`
	DueAt          time.Time `json:"due_at"`
}

// ReminderNudger turns core.reminder.due events into nudges. Reminders for
// tasks that are gone, completed or rescheduled since are dropped.
type ReminderNudger struct {
	taskRepo task.Repository
	notify   Notifier
	logger   *slog.Logger
	metrics  observability.Metrics
}

// NewReminderNudger creates a new reminder nudger. A nil notifier only logs.
func NewReminderNudger(taskRepo task.Repository, notify Notifier, logger *slog.Logger, metrics observability.Metrics) *ReminderNudger {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ReminderNudger{
		taskRepo: taskRepo,
		notify:   notify,
		logger:   logger,
		metrics:  metrics,
	}
}

// EventTypes returns the event types this subscriber handles.
func (n *ReminderNudger) EventTypes() []string {
	return []string{task.RoutingKeyReminderDue}
}

// Handle processes an event.
func (n *ReminderNudger) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	n.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", event.RoutingKey))

	var payload reminderDuePayload
	if err := event.Decode(&payload); err != nil {
		return fmt.Errorf("decode reminder payload: %w", err)
	}

	userID := event.Metadata.UserID
	logger := n.logger.With("task_id", event.AggregateID, "notification_id", payload.NotificationID)

	t, err := n.taskRepo.FindByID(ctx, userID, event.AggregateID)
	if errors.Is(err, task.ErrTaskNotFound) {
		logger.Debug("reminder for missing task dropped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load task for reminder: %w", err)
	}

	if t.IsCompleted() {
		logger.Debug("reminder for completed task dropped")
		return nil
	}
	if r := t.Reminder(); r != nil && r.NotificationID != payload.NotificationID {
		logger.Debug("superseded reminder dropped", "current", r.NotificationID)
		return nil
	}

	nudge := Nudge{
		TaskID:         t.ID(),
		UserID:         t.UserID(),
		Text:           t.Text(),
		NotificationID: payload.NotificationID,
		DueAt:          payload.DueAt,
	}
	logger.Info("nudge", "text", nudge.Text, "due_at", nudge.DueAt)
	if n.notify != nil {
		n.notify(ctx, nudge)
	}
	return nil
}
