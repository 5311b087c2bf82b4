package queries

import (
	"context"

	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/focus"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
)

// RankTasksQuery asks for the current ranking of the session's tasks.
type RankTasksQuery struct {
	// Reload refreshes the session from the store before ranking.
	Reload bool
	Limit  int
}

func (RankTasksQuery) QueryName() string { return "rank_tasks" }

// RankTasksResult is the ranked list with the focus task first.
type RankTasksResult struct {
	Strategy string          `json:"strategy"`
	Tasks    []RankedTaskDTO `json:"tasks"`
	Focus    *RankedTaskDTO  `json:"focus,omitempty"`
}

// RankTasksHandler handles the RankTasksQuery.
type RankTasksHandler struct {
	taskRepo task.Repository
	pins     focus.Repository
	tracker  *services.FocusTracker
}

// NewRankTasksHandler creates a new RankTasksHandler. pins may be nil.
func NewRankTasksHandler(taskRepo task.Repository, pins focus.Repository, tracker *services.FocusTracker) *RankTasksHandler {
	return &RankTasksHandler{taskRepo: taskRepo, pins: pins, tracker: tracker}
}

// Handle executes the RankTasksQuery.
func (h *RankTasksHandler) Handle(ctx context.Context, query RankTasksQuery) (*RankTasksResult, error) {
	if query.Reload {
		if err := LoadSession(ctx, h.taskRepo, h.pins, h.tracker.Session()); err != nil {
			return nil, err
		}
	}

	result := h.tracker.Recompute()
	ordered := result.Ordered
	if query.Limit > 0 && len(ordered) > query.Limit {
		ordered = ordered[:query.Limit]
	}

	out := &RankTasksResult{
		Strategy: h.tracker.Strategy(),
		Tasks:    make([]RankedTaskDTO, len(ordered)),
	}
	for i, r := range ordered {
		out.Tasks[i] = toRankedDTO(r)
	}
	if len(out.Tasks) > 0 {
		out.Focus = &out.Tasks[0]
	}
	return out, nil
}

// LoadSession fills the session with the user's stored tasks and restores
// the pinned task when it is still in the set.
func LoadSession(ctx context.Context, repo task.Repository, pins focus.Repository, session *services.Session) error {
	tasks, err := repo.FindByUserID(ctx, session.UserID())
	if err != nil {
		return err
	}
	session.Load(tasks)

	if pins == nil {
		return nil
	}
	pinned, err := pins.Pinned(ctx, session.UserID())
	if err != nil {
		return err
	}
	if _, ok := session.Get(pinned); ok {
		session.Pin(pinned)
	} else {
		session.Unpin()
	}
	return nil
}
