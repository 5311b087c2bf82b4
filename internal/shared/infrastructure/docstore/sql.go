package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/database"
)

// SQLStore keeps documents as JSON in the documents table. It runs inside
// the transaction carried by ctx when there is one.
type SQLStore struct {
	conn  database.Connection
	clock func() time.Time
}

// NewSQLStore creates a store over an open connection.
func NewSQLStore(conn database.Connection) *SQLStore {
	return &SQLStore{conn: conn, clock: time.Now}
}

func (s *SQLStore) postgres() bool {
	return s.conn.Driver() == database.DriverPostgres
}

func (s *SQLStore) bind(query string) string {
	return database.Rebind(s.conn.Driver(), query)
}

func (s *SQLStore) jsonParam() string {
	if s.postgres() {
		return "?::jsonb"
	}
	return "?"
}

// CreateOrReplace writes the whole document.
func (s *SQLStore) CreateOrReplace(ctx context.Context, collection, id string, fields Fields) error {
	if err := validate("create", collection, id, true); err != nil {
		return err
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return failure(KindInvalid, "create", collection, id, err)
	}

	now := s.clock().UTC()
	query := s.bind(fmt.Sprintf(`
		INSERT INTO documents (collection, id, fields, created_at, updated_at)
		VALUES (?, ?, %s, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE
		SET fields = excluded.fields, updated_at = excluded.updated_at`, s.jsonParam()))

	exec := database.ExecutorFromContext(ctx, s.conn)
	if _, err := exec.Exec(ctx, query, collection, id, string(data), now, now); err != nil {
		return classify("create", collection, id, err)
	}
	return nil
}

// Patch merges fields into an existing document.
func (s *SQLStore) Patch(ctx context.Context, collection, id string, fields Fields) error {
	if err := validate("patch", collection, id, true); err != nil {
		return err
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return failure(KindInvalid, "patch", collection, id, err)
	}

	merge := "json_patch(fields, ?)"
	if s.postgres() {
		merge = "fields || ?::jsonb"
	}
	query := s.bind(fmt.Sprintf(`
		UPDATE documents SET fields = %s, updated_at = ?
		WHERE collection = ? AND id = ?`, merge))

	exec := database.ExecutorFromContext(ctx, s.conn)
	result, err := exec.Exec(ctx, query, string(data), s.clock().UTC(), collection, id)
	if err != nil {
		return classify("patch", collection, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return classify("patch", collection, id, err)
	}
	if affected == 0 {
		return failure(KindNotFound, "patch", collection, id, nil)
	}
	return nil
}

// Remove deletes a document.
func (s *SQLStore) Remove(ctx context.Context, collection, id string) error {
	if err := validate("remove", collection, id, true); err != nil {
		return err
	}
	query := s.bind(`DELETE FROM documents WHERE collection = ? AND id = ?`)
	exec := database.ExecutorFromContext(ctx, s.conn)
	if _, err := exec.Exec(ctx, query, collection, id); err != nil {
		return classify("remove", collection, id, err)
	}
	return nil
}

// Get reads one document.
func (s *SQLStore) Get(ctx context.Context, collection, id string) (Fields, error) {
	if err := validate("get", collection, id, true); err != nil {
		return nil, err
	}

	column := "fields"
	if s.postgres() {
		column = "fields::text"
	}
	query := s.bind(fmt.Sprintf(`SELECT %s FROM documents WHERE collection = ? AND id = ?`, column))

	var data string
	exec := database.ExecutorFromContext(ctx, s.conn)
	if err := exec.QueryRow(ctx, query, collection, id).Scan(&data); err != nil {
		if database.IsNoRows(err) {
			return nil, failure(KindNotFound, "get", collection, id, nil)
		}
		return nil, classify("get", collection, id, err)
	}

	fields, err := decode([]byte(data))
	if err != nil {
		return nil, failure(KindInvalid, "get", collection, id, err)
	}
	return fields, nil
}

// QueryOrdered returns documents ordered by sortField.
func (s *SQLStore) QueryOrdered(ctx context.Context, collection, sortField string, dir Direction, limit int) ([]Document, error) {
	if err := validateQuery(collection, sortField, dir); err != nil {
		return nil, err
	}

	// sortField is checked against fieldName before it reaches the query.
	column, key := "fields", fmt.Sprintf("json_extract(fields, '$.%s')", sortField)
	if s.postgres() {
		column, key = "fields::text", fmt.Sprintf("(fields -> '%s')", sortField)
	}
	nullTest := key + " IS NULL"
	if s.postgres() {
		nullTest = fmt.Sprintf("(fields ->> '%s') IS NULL", sortField)
	}
	order := "ASC"
	if dir == Descending {
		order = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT id, %s FROM documents
		WHERE collection = ?
		ORDER BY %s, %s %s, id ASC`, column, nullTest, key, order)
	args := []any{collection}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	exec := database.ExecutorFromContext(ctx, s.conn)
	rows, err := exec.Query(ctx, s.bind(query), args...)
	if err != nil {
		return nil, classify("query", collection, "", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, classify("query", collection, "", err)
		}
		fields, err := decode([]byte(data))
		if err != nil {
			return nil, failure(KindInvalid, "query", collection, id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, classify("query", collection, "", err)
	}
	return docs, nil
}

// classify maps a driver error to a failure kind.
func classify(op, collection, id string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42501", len(pgErr.Code) >= 2 && pgErr.Code[:2] == "28":
			return failure(KindPermission, op, collection, id, err)
		case len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "22" || pgErr.Code[:2] == "23" || pgErr.Code[:2] == "42"):
			return failure(KindInvalid, op, collection, id, err)
		}
		return failure(KindConnectivity, op, collection, id, err)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH:
			return failure(KindPermission, op, collection, id, err)
		case sqlite3.SQLITE_ERROR, sqlite3.SQLITE_CONSTRAINT, sqlite3.SQLITE_MISMATCH, sqlite3.SQLITE_TOOBIG:
			return failure(KindInvalid, op, collection, id, err)
		}
	}
	return failure(KindConnectivity, op, collection, id, err)
}
