package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/migrations"
)

const tasks = "users/u1/tasks"

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "docs.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return NewSQLStore(conn)
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return newSQLiteStore(t) },
	}

	for name, factory := range stores {
		t.Run(name, func(t *testing.T) {
			runStoreContract(t, factory)
		})
	}
}

func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create then get returns the fields", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateOrReplace(ctx, tasks, "t1", Fields{"text": "write report", "priority": 2}))

		got, err := s.Get(ctx, tasks, "t1")
		require.NoError(t, err)
		assert.Equal(t, "write report", got["text"])
		assert.Equal(t, float64(2), got["priority"])
	})

	t.Run("create replaces the whole document", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateOrReplace(ctx, tasks, "t1", Fields{"text": "a", "priority": 1}))
		require.NoError(t, s.CreateOrReplace(ctx, tasks, "t1", Fields{"text": "b"}))

		got, err := s.Get(ctx, tasks, "t1")
		require.NoError(t, err)
		assert.Equal(t, "b", got["text"])
		assert.NotContains(t, got, "priority")
	})

	t.Run("patch merges fields", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateOrReplace(ctx, tasks, "t1", Fields{"text": "a", "completed": false}))
		require.NoError(t, s.Patch(ctx, tasks, "t1", Fields{"completed": true}))

		got, err := s.Get(ctx, tasks, "t1")
		require.NoError(t, err)
		assert.Equal(t, "a", got["text"])
		assert.Equal(t, true, got["completed"])
	})

	t.Run("patch of a missing document is not found", func(t *testing.T) {
		s := newStore(t)
		err := s.Patch(ctx, tasks, "missing", Fields{"completed": true})
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("get of a missing document is not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, tasks, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateOrReplace(ctx, tasks, "t1", Fields{"text": "a"}))
		require.NoError(t, s.Remove(ctx, tasks, "t1"))
		require.NoError(t, s.Remove(ctx, tasks, "t1"))

		_, err := s.Get(ctx, tasks, "t1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateOrReplace(ctx, tasks, "t1", Fields{"text": "a"}))

		_, err := s.Get(ctx, "users/u2/tasks", "t1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("query orders by field with missing values last", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateOrReplace(ctx, "leaderboard", "a", Fields{"completedCount": 3}))
		require.NoError(t, s.CreateOrReplace(ctx, "leaderboard", "b", Fields{"completedCount": 7}))
		require.NoError(t, s.CreateOrReplace(ctx, "leaderboard", "c", Fields{"name": "no count"}))
		require.NoError(t, s.CreateOrReplace(ctx, "leaderboard", "d", Fields{"completedCount": 3}))

		docs, err := s.QueryOrdered(ctx, "leaderboard", "completedCount", Descending, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "d", "c"}, ids(docs))

		docs, err = s.QueryOrdered(ctx, "leaderboard", "completedCount", Ascending, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "d"}, ids(docs))
	})

	t.Run("query orders timestamps as strings", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateOrReplace(ctx, tasks, "old", Fields{"completedAt": "2026-01-01T09:00:00Z"}))
		require.NoError(t, s.CreateOrReplace(ctx, tasks, "new", Fields{"completedAt": "2026-03-01T09:00:00Z"}))

		docs, err := s.QueryOrdered(ctx, tasks, "completedAt", Descending, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"new"}, ids(docs))
	})

	t.Run("invalid sort field is rejected", func(t *testing.T) {
		s := newStore(t)
		_, err := s.QueryOrdered(ctx, tasks, "x'; DROP TABLE documents; --", Ascending, 0)
		assert.Equal(t, KindInvalid, KindOf(err))
	})

	t.Run("empty id is rejected", func(t *testing.T) {
		s := newStore(t)
		err := s.CreateOrReplace(ctx, tasks, "", Fields{})
		assert.Equal(t, KindInvalid, KindOf(err))
	})
}

func TestSQLStore_Transaction(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	uow := database.NewUnitOfWork(s.conn)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, s.CreateOrReplace(txCtx, tasks, "t1", Fields{"text": "a"}))
	require.NoError(t, uow.Rollback(txCtx))

	_, err = s.Get(ctx, tasks, "t1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CopiesDocuments(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	fields := Fields{"text": "a"}
	require.NoError(t, s.CreateOrReplace(ctx, tasks, "t1", fields))

	fields["text"] = "changed"
	got, err := s.Get(ctx, tasks, "t1")
	require.NoError(t, err)
	assert.Equal(t, "a", got["text"])

	got["text"] = "changed again"
	again, err := s.Get(ctx, tasks, "t1")
	require.NoError(t, err)
	assert.Equal(t, "a", again["text"])
}

func TestFailure(t *testing.T) {
	err := &Failure{Kind: KindPermission, Op: "patch", Path: "users/u1/tasks/t1", Err: errors.New("denied")}
	assert.Equal(t, "docstore patch users/u1/tasks/t1: permission: denied", err.Error())
	assert.Equal(t, KindPermission, KindOf(err))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, FailureKind(""), KindOf(errors.New("plain")))
}

func ids(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
