package outbox

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/migrations"
)

func newSQLiteRepository(t *testing.T) *SQLRepository {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "outbox.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return NewSQLRepository(conn)
}

func sqlTestMessage(routingKey string) *Message {
	return &Message{
		EventID:       uuid.New(),
		AggregateType: "Task",
		AggregateID:   "task-1",
		EventType:     routingKey,
		RoutingKey:    routingKey,
		Payload:       []byte(`{"data":{}}`),
		Metadata:      []byte(`{"user_id":"u1"}`),
		CreatedAt:     time.Now(),
	}
}

func TestSQLRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("saves and reads unpublished messages in order", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		first := sqlTestMessage("core.task.created")
		second := sqlTestMessage("core.task.completed")
		require.NoError(t, repo.SaveBatch(ctx, []*Message{first, second}))
		assert.NotZero(t, first.ID)
		assert.Greater(t, second.ID, first.ID)

		msgs, err := repo.GetUnpublished(ctx, 10)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, first.EventID, msgs[0].EventID)
		assert.Equal(t, "task-1", msgs[0].AggregateID)
		assert.JSONEq(t, `{"user_id":"u1"}`, string(msgs[0].Metadata))
		assert.Equal(t, "core.task.completed", msgs[1].RoutingKey)
	})

	t.Run("published messages are no longer returned", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		msg := sqlTestMessage("core.task.deleted")
		require.NoError(t, repo.Save(ctx, msg))
		require.NoError(t, repo.MarkPublished(ctx, msg.ID))

		msgs, err := repo.GetUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("failed messages wait for their retry time", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		msg := sqlTestMessage("core.focus.changed")
		require.NoError(t, repo.Save(ctx, msg))
		require.NoError(t, repo.MarkFailed(ctx, msg.ID, "broker down", time.Now().Add(time.Hour)))

		msgs, err := repo.GetUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("failed messages past their retry time come back", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		msg := sqlTestMessage("core.focus.changed")
		require.NoError(t, repo.Save(ctx, msg))
		require.NoError(t, repo.MarkFailed(ctx, msg.ID, "broker down", time.Now().Add(-time.Minute)))

		failed, err := repo.GetUnpublished(ctx, 10)
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, 1, failed[0].RetryCount)
		require.NotNil(t, failed[0].LastError)
		assert.Equal(t, "broker down", *failed[0].LastError)
	})

	t.Run("dead messages are skipped", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		msg := sqlTestMessage("core.reminder.due")
		require.NoError(t, repo.Save(ctx, msg))
		require.NoError(t, repo.MarkDead(ctx, msg.ID, "max retries"))

		msgs, err := repo.GetUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("rolled back batches leave nothing behind", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		uow := database.NewUnitOfWork(repo.conn)
		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.SaveBatch(txCtx, []*Message{sqlTestMessage("core.task.created")}))
		require.NoError(t, uow.Rollback(txCtx))

		msgs, err := repo.GetUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("delete old removes published messages past retention", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		msg := sqlTestMessage("core.task.created")
		require.NoError(t, repo.Save(ctx, msg))
		require.NoError(t, repo.MarkPublished(ctx, msg.ID))

		deleted, err := repo.DeleteOld(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)

		repo.clock = func() time.Time { return time.Now().AddDate(0, 0, 10) }
		deleted, err = repo.DeleteOld(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})
}
