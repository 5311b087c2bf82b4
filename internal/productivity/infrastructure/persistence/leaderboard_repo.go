package persistence

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/leaderboard"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/docstore"
)

// LeaderboardCollection holds one document per user.
const LeaderboardCollection = "leaderboard"

const (
	fieldLeaderUserID          = "userId"
	fieldLeaderCompletedCount  = "completedCount"
	fieldLeaderLastCompletedAt = "lastCompletedAt"
)

// DocumentLeaderboardRepository implements leaderboard.Repository over a
// docstore.Store.
type DocumentLeaderboardRepository struct {
	store docstore.Store
	mu    sync.Mutex
}

// NewDocumentLeaderboardRepository creates a leaderboard repository.
func NewDocumentLeaderboardRepository(store docstore.Store) *DocumentLeaderboardRepository {
	return &DocumentLeaderboardRepository{store: store}
}

// RecordCompletion adds one completion for the user.
func (r *DocumentLeaderboardRepository) RecordCompletion(ctx context.Context, userID string, at time.Time) (leaderboard.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := leaderboard.Entry{UserID: userID}
	fields, err := r.store.Get(ctx, LeaderboardCollection, userID)
	switch {
	case err == nil:
		entry = entryFromFields(userID, fields)
	case !errors.Is(err, docstore.ErrNotFound):
		return leaderboard.Entry{}, err
	}

	entry.CompletedCount++
	if at.After(entry.LastCompletedAt) {
		entry.LastCompletedAt = at
	}

	err = r.store.CreateOrReplace(ctx, LeaderboardCollection, userID, docstore.Fields{
		fieldLeaderUserID:          entry.UserID,
		fieldLeaderCompletedCount:  entry.CompletedCount,
		fieldLeaderLastCompletedAt: entry.LastCompletedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return leaderboard.Entry{}, err
	}
	return entry, nil
}

// Top returns the entries with the most completions first.
func (r *DocumentLeaderboardRepository) Top(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	docs, err := r.store.QueryOrdered(ctx, LeaderboardCollection, fieldLeaderCompletedCount, docstore.Descending, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]leaderboard.Entry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, entryFromFields(doc.ID, doc.Fields))
	}
	return entries, nil
}

func entryFromFields(id string, fields docstore.Fields) leaderboard.Entry {
	entry := leaderboard.Entry{UserID: id}
	if uid, ok := fields[fieldLeaderUserID].(string); ok && uid != "" {
		entry.UserID = uid
	}
	switch n := fields[fieldLeaderCompletedCount].(type) {
	case float64:
		entry.CompletedCount = int(n)
	case int:
		entry.CompletedCount = n
	}
	if s, ok := fields[fieldLeaderLastCompletedAt].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			entry.LastCompletedAt = ts
		}
	}
	return entry
}
