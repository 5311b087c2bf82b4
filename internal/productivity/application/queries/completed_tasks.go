package queries

import (
	"context"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
)

// DefaultCompletedLimit caps the completed list when no limit is given.
const DefaultCompletedLimit = 50

// CompletedTasksQuery lists the most recently completed tasks.
type CompletedTasksQuery struct {
	UserID string
	Limit  int
}

func (CompletedTasksQuery) QueryName() string { return "completed_tasks" }

// CompletedTasksHandler handles the CompletedTasksQuery.
type CompletedTasksHandler struct {
	taskRepo task.Repository
}

// NewCompletedTasksHandler creates a new CompletedTasksHandler.
func NewCompletedTasksHandler(taskRepo task.Repository) *CompletedTasksHandler {
	return &CompletedTasksHandler{taskRepo: taskRepo}
}

// Handle executes the CompletedTasksQuery.
func (h *CompletedTasksHandler) Handle(ctx context.Context, query CompletedTasksQuery) ([]TaskDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultCompletedLimit
	}
	tasks, err := h.taskRepo.FindCompleted(ctx, query.UserID, limit)
	if err != nil {
		return nil, err
	}
	return toTaskDTOs(tasks), nil
}
