package commands

import (
	"context"

	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
)

// CompleteTaskCommand completes a task of the session's user.
type CompleteTaskCommand struct {
	TaskID string
}

func (CompleteTaskCommand) CommandName() string { return "complete_task" }

// DeleteTaskCommand deletes a task of the session's user.
type DeleteTaskCommand struct {
	TaskID string
}

func (DeleteTaskCommand) CommandName() string { return "delete_task" }

// RescheduleTaskCommand defers a task to its next reminder.
type RescheduleTaskCommand struct {
	TaskID string
}

func (RescheduleTaskCommand) CommandName() string { return "reschedule_task" }

// LifecycleHandler handles the complete, delete and reschedule commands
// through the lifecycle adapter.
type LifecycleHandler struct {
	taskRepo  task.Repository
	session   *services.Session
	lifecycle *services.LifecycleAdapter
}

// NewLifecycleHandler creates a new LifecycleHandler.
func NewLifecycleHandler(taskRepo task.Repository, session *services.Session, lifecycle *services.LifecycleAdapter) *LifecycleHandler {
	return &LifecycleHandler{taskRepo: taskRepo, session: session, lifecycle: lifecycle}
}

// Complete executes the CompleteTaskCommand.
func (h *LifecycleHandler) Complete(ctx context.Context, cmd CompleteTaskCommand) (services.Result, error) {
	t, err := h.resolve(ctx, cmd.TaskID)
	if err != nil {
		return services.Result{Op: services.OpComplete}, err
	}
	return h.lifecycle.Complete(ctx, t)
}

// Delete executes the DeleteTaskCommand.
func (h *LifecycleHandler) Delete(ctx context.Context, cmd DeleteTaskCommand) (services.Result, error) {
	t, err := h.resolve(ctx, cmd.TaskID)
	if err != nil {
		return services.Result{Op: services.OpDelete}, err
	}
	return h.lifecycle.Delete(ctx, t)
}

// Reschedule executes the RescheduleTaskCommand.
func (h *LifecycleHandler) Reschedule(ctx context.Context, cmd RescheduleTaskCommand) (services.Result, error) {
	t, err := h.resolve(ctx, cmd.TaskID)
	if err != nil {
		return services.Result{Op: services.OpReschedule}, err
	}
	return h.lifecycle.Reschedule(ctx, t)
}

// resolve prefers the session's instance, which reflects optimistic
// changes the store may not have yet.
func (h *LifecycleHandler) resolve(ctx context.Context, id string) (*task.Task, error) {
	if id == "" {
		return nil, task.ErrTaskNotFound
	}
	if t, ok := h.session.Get(id); ok {
		return t, nil
	}
	t, err := h.taskRepo.FindByID(ctx, h.session.UserID(), id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, task.ErrTaskNotFound
	}
	return t, nil
}
