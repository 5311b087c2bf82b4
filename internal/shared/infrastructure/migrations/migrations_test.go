package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/database/sqlite"
)

func TestFiles(t *testing.T) {
	t.Run("sqlite migrations are ordered", func(t *testing.T) {
		files, err := Files(database.DriverSQLite)
		require.NoError(t, err)
		assert.Equal(t, []string{"sqlite/001_documents.up.sql", "sqlite/002_outbox.up.sql"}, files)
	})

	t.Run("postgres has the same migrations", func(t *testing.T) {
		files, err := Files(database.DriverPostgres)
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("unknown driver fails", func(t *testing.T) {
		_, err := Files(database.Driver("oracle"))
		assert.Error(t, err)
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "nudge.db"),
	})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Run(ctx, conn))
	require.NoError(t, Run(ctx, conn), "running twice is harmless")

	var count int
	err = conn.QueryRow(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('documents', 'outbox')`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
