package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
)

// List views.
const (
	ViewActive    = "active"
	ViewFuture    = "future"
	ViewCompleted = "completed"
	ViewAll       = "all"
)

// ListTasksQuery contains the parameters for listing tasks.
type ListTasksQuery struct {
	UserID string
	View   string // "active" (default), "future", "completed", "all"
	Limit  int    // 0 = no limit
}

func (ListTasksQuery) QueryName() string { return "list_tasks" }

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo task.Repository
	clock    func() time.Time
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo task.Repository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo, clock: time.Now}
}

// Handle executes the ListTasksQuery. Tasks come back oldest first.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	view := query.View
	if view == "" {
		view = ViewActive
	}

	var keep func(*task.Task) bool
	now := h.clock()
	switch view {
	case ViewActive:
		keep = func(t *task.Task) bool { return t.IsActive(now) }
	case ViewFuture:
		keep = func(t *task.Task) bool { return !t.IsCompleted() && t.IsFuture(now) }
	case ViewCompleted:
		keep = (*task.Task).IsCompleted
	case ViewAll:
		keep = func(*task.Task) bool { return true }
	default:
		return nil, fmt.Errorf("unknown view %q", query.View)
	}

	tasks, err := h.taskRepo.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	filtered := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			filtered = append(filtered, t)
		}
	}
	if query.Limit > 0 && len(filtered) > query.Limit {
		filtered = filtered[:query.Limit]
	}
	return toTaskDTOs(filtered), nil
}
