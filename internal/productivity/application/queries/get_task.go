package queries

import (
	"context"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
)

// ErrTaskNotFound is task.ErrTaskNotFound, re-exported for adapters that
// only import queries.
var ErrTaskNotFound = task.ErrTaskNotFound

// GetTaskQuery loads one task owned by UserID.
type GetTaskQuery struct {
	TaskID string
	UserID string
}

func (GetTaskQuery) QueryName() string { return "get_task" }

type GetTaskHandler struct {
	taskRepo task.Repository
}

func NewGetTaskHandler(taskRepo task.Repository) *GetTaskHandler {
	return &GetTaskHandler{taskRepo: taskRepo}
}

// Handle reports another user's task as not found.
func (h *GetTaskHandler) Handle(ctx context.Context, query GetTaskQuery) (*TaskDTO, error) {
	if query.TaskID == "" {
		return nil, ErrTaskNotFound
	}
	t, err := h.taskRepo.FindByID(ctx, query.UserID, query.TaskID)
	switch {
	case err != nil:
		return nil, err
	case t == nil, t.UserID() != query.UserID:
		return nil, ErrTaskNotFound
	}
	dto := ToTaskDTO(t)
	return &dto, nil
}
