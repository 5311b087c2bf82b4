package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
	sharedApplication "github.com/felixgeelhaar/nudge/internal/shared/application"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/outbox"
)

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	UserID       string
	Text         string
	Priority     string
	Intervals    []int // reminder cadences in minutes
	ScheduledFor *time.Time
	Subtasks     []string
}

func (CreateTaskCommand) CommandName() string { return "create_task" }

// CreateTaskResult contains the result of creating a task.
type CreateTaskResult struct {
	TaskID string
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	tracker    *services.FocusTracker
	clock      func() time.Time
}

// NewCreateTaskHandler creates a new CreateTaskHandler. When tracker is
// set, the new task joins its session and the ranking is refreshed.
func NewCreateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, tracker *services.FocusTracker) *CreateTaskHandler {
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		tracker:    tracker,
		clock:      time.Now,
	}
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	now := h.clock()
	t, err := buildTask(cmd, now)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		events := t.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, cmd.UserID))
		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return nil, err
	}
	t.ClearDomainEvents()

	if h.tracker != nil && h.tracker.Session().UserID() == cmd.UserID {
		h.tracker.Session().Add(t)
		h.tracker.Recompute()
	}
	return &CreateTaskResult{TaskID: t.ID()}, nil
}

func buildTask(cmd CreateTaskCommand, now time.Time) (*task.Task, error) {
	t, err := task.NewTask(cmd.UserID, cmd.Text, now)
	if err != nil {
		return nil, err
	}

	if cmd.Priority != "" {
		priority, err := value_objects.ParsePriority(cmd.Priority)
		if err != nil {
			return nil, err
		}
		t.SetPriority(priority, now)
	}

	if len(cmd.Intervals) > 0 {
		intervals := make([]value_objects.ReminderInterval, 0, len(cmd.Intervals))
		for _, minutes := range cmd.Intervals {
			iv, err := value_objects.NewReminderInterval(minutes)
			if err != nil {
				return nil, err
			}
			intervals = append(intervals, iv)
		}
		t.SetIntervals(intervals, now)
	}

	if cmd.ScheduledFor != nil {
		t.SetScheduledFor(cmd.ScheduledFor, now)
	}

	for _, text := range cmd.Subtasks {
		if _, err := t.AddSubtask(text, nil, now); err != nil {
			return nil, err
		}
	}
	return t, nil
}
