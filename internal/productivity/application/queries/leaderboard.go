package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/leaderboard"
)

// DefaultLeaderboardLimit is the number of entries shown by default.
const DefaultLeaderboardLimit = 10

// LeaderboardEntryDTO is one row of the leaderboard.
type LeaderboardEntryDTO struct {
	Position        int       `json:"position"`
	UserID          string    `json:"user_id"`
	CompletedCount  int       `json:"completed_count"`
	LastCompletedAt time.Time `json:"last_completed_at"`
}

// LeaderboardQuery asks for the top completers.
type LeaderboardQuery struct {
	Limit int
}

func (LeaderboardQuery) QueryName() string { return "leaderboard" }

// LeaderboardHandler handles the LeaderboardQuery.
type LeaderboardHandler struct {
	repo leaderboard.Repository
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(repo leaderboard.Repository) *LeaderboardHandler {
	return &LeaderboardHandler{repo: repo}
}

// Handle executes the LeaderboardQuery.
func (h *LeaderboardHandler) Handle(ctx context.Context, query LeaderboardQuery) ([]LeaderboardEntryDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	entries, err := h.repo.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntryDTO{
			Position:        i + 1,
			UserID:          e.UserID,
			CompletedCount:  e.CompletedCount,
			LastCompletedAt: e.LastCompletedAt,
		}
	}
	return out, nil
}
