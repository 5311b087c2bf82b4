package persistence

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/docstore"
)

const (
	focusDocID      = "focus"
	fieldPinnedTask  = "pinnedTaskId"
)

// SettingsCollection holds per-user settings documents.
func SettingsCollection(userID string) string {
	return "users/" + userID + "/settings"
}

// DocumentFocusRepository implements focus.Repository over a docstore.Store.
type DocumentFocusRepository struct {
	store docstore.Store
}

// NewDocumentFocusRepository creates a focus repository.
func NewDocumentFocusRepository(store docstore.Store) *DocumentFocusRepository {
	return &DocumentFocusRepository{store: store}
}

// Pinned returns the pinned task id, or "" when nothing is pinned.
func (r *DocumentFocusRepository) Pinned(ctx context.Context, userID string) (string, error) {
	fields, err := r.store.Get(ctx, SettingsCollection(userID), focusDocID)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	id, _ := fields[fieldPinnedTask].(string)
	return id, nil
}

// SetPinned stores the pinned task id. An empty id clears the pin.
func (r *DocumentFocusRepository) SetPinned(ctx context.Context, userID, taskID string) error {
	return r.store.CreateOrReplace(ctx, SettingsCollection(userID), focusDocID, docstore.Fields{
		fieldPinnedTask: taskID,
	})
}
