// Package persistence stores productivity aggregates in the document store.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/docstore"
)

// TaskCollection is the collection holding a user's tasks.
func TaskCollection(userID string) string {
	return "users/" + userID + "/tasks"
}

// DocumentTaskRepository implements task.Repository over a docstore.Store.
type DocumentTaskRepository struct {
	store  docstore.Store
	logger *slog.Logger
}

// NewDocumentTaskRepository creates a task repository.
func NewDocumentTaskRepository(store docstore.Store, logger *slog.Logger) *DocumentTaskRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentTaskRepository{store: store, logger: logger}
}

// Save writes the whole task document.
func (r *DocumentTaskRepository) Save(ctx context.Context, t *task.Task) error {
	doc := task.ToDocument(t)
	return r.store.CreateOrReplace(ctx, TaskCollection(t.UserID()), t.ID(), docstore.Fields(doc))
}

// Patch writes only the named fields. A missing document reports
// task.ErrTaskNotFound.
func (r *DocumentTaskRepository) Patch(ctx context.Context, t *task.Task, fields ...task.Field) error {
	if len(fields) == 0 {
		return nil
	}
	doc := task.ToDocument(t).Fields(fields...)
	err := r.store.Patch(ctx, TaskCollection(t.UserID()), t.ID(), docstore.Fields(doc))
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", task.ErrTaskNotFound, err)
	}
	return err
}

// FindByID loads one task.
func (r *DocumentTaskRepository) FindByID(ctx context.Context, userID, id string) (*task.Task, error) {
	fields, err := r.store.Get(ctx, TaskCollection(userID), id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}

	t, ok := r.decode(userID, id, fields)
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	return t, nil
}

// FindByUserID loads every task of the user, oldest first.
func (r *DocumentTaskRepository) FindByUserID(ctx context.Context, userID string) ([]*task.Task, error) {
	docs, err := r.store.QueryOrdered(ctx, TaskCollection(userID), string(task.FieldCreatedAt), docstore.Ascending, 0)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(userID, docs, func(*task.Task) bool { return true }, 0), nil
}

// FindCompleted returns completed tasks, most recently completed first.
func (r *DocumentTaskRepository) FindCompleted(ctx context.Context, userID string, limit int) ([]*task.Task, error) {
	docs, err := r.store.QueryOrdered(ctx, TaskCollection(userID), string(task.FieldCompletedAt), docstore.Descending, 0)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(userID, docs, (*task.Task).IsCompleted, limit), nil
}

// Delete removes the task document.
func (r *DocumentTaskRepository) Delete(ctx context.Context, t *task.Task) error {
	return r.store.Remove(ctx, TaskCollection(t.UserID()), t.ID())
}

func (r *DocumentTaskRepository) decodeAll(userID string, docs []docstore.Document, keep func(*task.Task) bool, limit int) []*task.Task {
	tasks := make([]*task.Task, 0, len(docs))
	for _, doc := range docs {
		t, ok := r.decode(userID, doc.ID, doc.Fields)
		if !ok || !keep(t) {
			continue
		}
		tasks = append(tasks, t)
		if limit > 0 && len(tasks) == limit {
			break
		}
	}
	return tasks
}

// decode fills in the id and owner from the document path when the
// document itself lacks them.
func (r *DocumentTaskRepository) decode(userID, id string, fields docstore.Fields) (*task.Task, bool) {
	doc := task.Document(fields)
	if _, present := doc[string(task.FieldID)]; !present {
		doc[string(task.FieldID)] = id
	}
	if uid, _ := doc[string(task.FieldUserID)].(string); uid == "" {
		doc[string(task.FieldUserID)] = userID
	}

	t, malformed, ok := task.FromDocument(doc)
	if !ok {
		r.logger.Warn("skipping task document without id", "doc_id", id)
		return nil, false
	}
	for _, m := range malformed {
		r.logger.Warn("malformed task field",
			"task_id", id,
			"field", string(m.Field),
			"value", m.Value,
		)
	}
	return t, true
}
