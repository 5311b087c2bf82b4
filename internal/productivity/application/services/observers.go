package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/nudge/internal/shared/application"
	"github.com/felixgeelhaar/nudge/internal/shared/domain"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/outbox"
)

// FocusEventObserver publishes a focus changed event for every change of
// the focus task.
type FocusEventObserver struct {
	ctx       context.Context
	publisher eventbus.Publisher
	userID    string
	clock     func() time.Time
	logger    *slog.Logger

	previousID string
}

// NewFocusEventObserver creates an observer publishing on the event bus.
func NewFocusEventObserver(ctx context.Context, publisher eventbus.Publisher, userID string, logger *slog.Logger) *FocusEventObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &FocusEventObserver{
		ctx:       ctx,
		publisher: publisher,
		userID:    userID,
		clock:     time.Now,
		logger:    logger,
	}
}

func (o *FocusEventObserver) OnFocusChanged(top *RankedTask) {
	var taskID string
	var score float64
	if top != nil {
		taskID = top.Task.ID()
		score = top.Score
	}

	event := task.NewFocusChanged(o.userID, o.previousID, taskID, score, o.clock())
	sharedApplication.ApplyEventMetadata([]domain.DomainEvent{&event}, sharedApplication.NewEventMetadata(o.ctx, o.userID))
	o.previousID = taskID

	msg, err := outbox.NewMessage(&event)
	if err != nil {
		o.logger.Error("failed to encode focus event", "error", err)
		return
	}
	if err := o.publisher.Publish(o.ctx, msg.RoutingKey, msg.Payload); err != nil {
		o.logger.Warn("failed to publish focus event", "task_id", taskID, "error", err)
	}
}

func (o *FocusEventObserver) OnRankingUpdated([]RankedTask) {}
