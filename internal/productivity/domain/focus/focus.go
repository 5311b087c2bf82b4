// Package focus holds the user's focus preferences that outlive a session.
package focus

import "context"

// Repository persists the pinned focus task of each user.
type Repository interface {
	// Pinned returns the pinned task id, or "" when nothing is pinned.
	Pinned(ctx context.Context, userID string) (string, error)
	// SetPinned pins a task. An empty id clears the pin.
	SetPinned(ctx context.Context, userID, taskID string) error
}
