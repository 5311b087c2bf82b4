package database

import "strings"

// Driver names a storage backend for tasks, the leaderboard and the outbox.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// MemoryPath keeps a SQLite store in process memory. Nothing survives Close.
const MemoryPath = ":memory:"

// IsValid reports whether d names a backend with a registered opener slot.
func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// DetectDriver guesses the backend from a connection string. An empty
// string selects SQLite so nudge runs with no setup.
func DetectDriver(url string) Driver {
	switch {
	case url == "", url == MemoryPath:
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		return DriverSQLite
	}
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(url, ext) {
			return DriverSQLite
		}
	}
	return DriverPostgres
}

// SQLitePathFromURL strips the sqlite:// scheme from url.
func SQLitePathFromURL(url string) string {
	return strings.TrimPrefix(url, "sqlite://")
}
