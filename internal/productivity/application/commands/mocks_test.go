package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
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

// mockUnitOfWork is a mock implementation of application.UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return ctx, args.Error(0)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockReminders struct {
	mock.Mock
}

func (m *mockReminders) ScheduleReminder(ctx context.Context, taskID string, after value_objects.ReminderInterval) (task.Reminder, error) {
	args := m.Called(ctx, taskID, after)
	return args.Get(0).(task.Reminder), args.Error(1)
}

func (m *mockReminders) CancelReminder(ctx context.Context, notificationID string) error {
	return m.Called(ctx, notificationID).Error(0)
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

func newUnitOfWork() *mockUnitOfWork {
	uow := new(mockUnitOfWork)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	return uow
}
