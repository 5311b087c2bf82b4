package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	t.Run("sqlite keeps question marks", func(t *testing.T) {
		q := "SELECT * FROM documents WHERE collection = ? AND id = ?"
		assert.Equal(t, q, Rebind(DriverSQLite, q))
	})

	t.Run("postgres numbers placeholders", func(t *testing.T) {
		q := "UPDATE documents SET fields = ? WHERE collection = ? AND id = ?"
		assert.Equal(t, "UPDATE documents SET fields = $1 WHERE collection = $2 AND id = $3", Rebind(DriverPostgres, q))
	})

	t.Run("quoted question marks are left alone", func(t *testing.T) {
		q := "SELECT '?' FROM t WHERE a = ?"
		assert.Equal(t, "SELECT '?' FROM t WHERE a = $1", Rebind(DriverPostgres, q))
	})
}
