package queries

import (
	"context"

	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
)

// ExplainTaskQuery asks why a task scores the way it does.
type ExplainTaskQuery struct {
	TaskID string
}

func (ExplainTaskQuery) QueryName() string { return "explain_task" }

// ExplainTaskHandler handles the ExplainTaskQuery.
type ExplainTaskHandler struct {
	taskRepo task.Repository
	tracker  *services.FocusTracker
}

// NewExplainTaskHandler creates a new ExplainTaskHandler.
func NewExplainTaskHandler(taskRepo task.Repository, tracker *services.FocusTracker) *ExplainTaskHandler {
	return &ExplainTaskHandler{taskRepo: taskRepo, tracker: tracker}
}

// Handle executes the ExplainTaskQuery. Rank is 0 when the task is not in
// the latest ranking, for example because it is completed or in the future.
func (h *ExplainTaskHandler) Handle(ctx context.Context, query ExplainTaskQuery) (*RankedTaskDTO, error) {
	if query.TaskID == "" {
		return nil, ErrTaskNotFound
	}
	session := h.tracker.Session()

	t, ok := session.Get(query.TaskID)
	if !ok {
		var err error
		t, err = h.taskRepo.FindByID(ctx, session.UserID(), query.TaskID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, ErrTaskNotFound
		}
	}

	score := h.tracker.Score(t)
	dto := toRankedDTO(services.RankedTask{Task: t, Score: score.Value, Breakdown: score.Breakdown})
	for _, r := range h.tracker.Last().Ordered {
		if r.Task.ID() == t.ID() {
			dto.Rank = r.Rank
			break
		}
	}
	return &dto, nil
}
