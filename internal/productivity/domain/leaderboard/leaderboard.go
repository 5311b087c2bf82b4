// Package leaderboard tracks how many tasks each user has completed.
package leaderboard

import (
	"context"
	"time"
)

// Entry is one user's standing.
type Entry struct {
	UserID          string
	CompletedCount  int
	LastCompletedAt time.Time
}

// Repository persists leaderboard entries.
type Repository interface {
	// RecordCompletion adds one completion for the user.
	RecordCompletion(ctx context.Context, userID string, at time.Time) (Entry, error)
	// Top returns the entries with the most completions first.
	Top(ctx context.Context, limit int) ([]Entry, error)
}
