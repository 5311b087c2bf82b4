package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/leaderboard"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/stretchr/testify/mock"
)

var now = time.Date(2026, 5, 12, 10, 30, 0, 0, time.UTC)

// mockTaskRepo is a mock implementation of task.Repository.
type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) Patch(ctx context.Context, t *task.Task, fields ...task.Field) error {
	return m.Called(ctx, t, fields).Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, userID, id string) (*task.Task, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindByUserID(ctx context.Context, userID string) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindCompleted(ctx context.Context, userID string, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) Delete(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

type mockLeaderboard struct {
	mock.Mock
}

func (m *mockLeaderboard) RecordCompletion(ctx context.Context, userID string, at time.Time) (leaderboard.Entry, error) {
	args := m.Called(ctx, userID, at)
	return args.Get(0).(leaderboard.Entry), args.Error(1)
}

func (m *mockLeaderboard) Top(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leaderboard.Entry), args.Error(1)
}

type mockPins struct {
	mock.Mock
}

func (m *mockPins) Pinned(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockPins) SetPinned(ctx context.Context, userID, taskID string) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

func newTask(id string, mutate func(*task.Snapshot)) *task.Task {
	s := task.Snapshot{
		ID:        id,
		UserID:    "user-1",
		Text:      "task " + id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(&s)
	}
	return task.Rehydrate(s)
}

func at(ts time.Time) *time.Time { return &ts }
