package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/database"
)

func TestNewConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the data directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "nudge.db")

		conn, err := NewConnection(ctx, database.Config{SQLitePath: path})
		require.NoError(t, err)
		defer conn.Close()

		assert.NoError(t, conn.Ping(ctx))
		assert.Equal(t, database.DriverSQLite, conn.Driver())
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("accepts a sqlite url", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nudge.db")

		conn, err := NewConnection(ctx, database.Config{URL: "sqlite://" + path})
		require.NoError(t, err)
		defer conn.Close()

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("memory store keeps data for the connection's lifetime", func(t *testing.T) {
		conn, err := NewConnection(ctx, database.Config{SQLitePath: database.MemoryPath})
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.Exec(ctx, `CREATE TABLE tasks (id TEXT PRIMARY KEY, description TEXT)`)
		require.NoError(t, err)
		res, err := conn.Exec(ctx, `INSERT INTO tasks (id, description) VALUES (?, ?)`, "t1", "water plants")
		require.NoError(t, err)
		affected, err := res.RowsAffected()
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		var description string
		require.NoError(t, conn.QueryRow(ctx, `SELECT description FROM tasks WHERE id = ?`, "t1").Scan(&description))
		assert.Equal(t, "water plants", description)
	})
}

func TestConnection_Transaction(t *testing.T) {
	ctx := context.Background()
	conn, err := NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "nudge.db")})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(ctx, `CREATE TABLE tasks (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	tx, err := conn.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, `INSERT INTO tasks (id) VALUES (?)`, "kept")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	tx, err = conn.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, `INSERT INTO tasks (id) VALUES (?)`, "dropped")
	require.NoError(t, err)
	rows, err := tx.Query(ctx, `SELECT id FROM tasks ORDER BY id`)
	require.NoError(t, err)
	var seen []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		seen = append(seen, id)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())
	assert.Equal(t, []string{"dropped", "kept"}, seen)
	require.NoError(t, tx.Rollback(ctx))

	var n int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestDSN(t *testing.T) {
	assert.Contains(t, dsn("/tmp/nudge.db", 0), "busy_timeout(5000)")
	assert.Contains(t, dsn("/tmp/nudge.db", 0), "journal_mode(WAL)")
	assert.NotContains(t, dsn(database.MemoryPath, 0), "journal_mode")
	assert.Contains(t, dsn("file:nudge.db?mode=rwc", 0), "mode=rwc&_pragma=")
}
