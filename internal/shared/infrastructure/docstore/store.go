// Package docstore is a small document store: named collections of JSON
// documents keyed by id, with ordered queries on a single field.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Direction orders query results.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Fields is the content of a document.
type Fields map[string]any

// Document is a stored document with its id.
type Document struct {
	ID     string
	Fields Fields
}

// Store is the document store contract.
type Store interface {
	// CreateOrReplace writes the whole document.
	CreateOrReplace(ctx context.Context, collection, id string, fields Fields) error
	// Patch merges fields into an existing document.
	Patch(ctx context.Context, collection, id string, fields Fields) error
	// Remove deletes a document. Removing a missing document succeeds.
	Remove(ctx context.Context, collection, id string) error
	// Get reads one document.
	Get(ctx context.Context, collection, id string) (Fields, error)
	// QueryOrdered returns documents ordered by sortField. Documents without
	// the field come last; ties are ordered by id. A limit <= 0 means all.
	QueryOrdered(ctx context.Context, collection, sortField string, dir Direction, limit int) ([]Document, error)
}

// FailureKind classifies store failures.
type FailureKind string

const (
	KindConnectivity FailureKind = "connectivity"
	KindPermission   FailureKind = "permission"
	KindNotFound     FailureKind = "not_found"
	KindInvalid      FailureKind = "invalid"
)

// ErrNotFound matches every not-found Failure.
var ErrNotFound = errors.New("document not found")

// Failure is a structured store error.
type Failure struct {
	Kind FailureKind
	Op   string
	Path string
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("docstore %s %s: %s", f.Op, f.Path, f.Kind)
	}
	return fmt.Sprintf("docstore %s %s: %s: %v", f.Op, f.Path, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is lets errors.Is(err, ErrNotFound) match not-found failures.
func (f *Failure) Is(target error) bool {
	return target == ErrNotFound && f.Kind == KindNotFound
}

// KindOf returns the failure kind of err, or "" when err is not a Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

func failure(kind FailureKind, op, collection, id string, err error) *Failure {
	path := collection
	if id != "" {
		path += "/" + id
	}
	return &Failure{Kind: kind, Op: op, Path: path, Err: err}
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validate(op, collection, id string, needID bool) error {
	if collection == "" {
		return failure(KindInvalid, op, collection, id, errors.New("collection is required"))
	}
	if needID && id == "" {
		return failure(KindInvalid, op, collection, id, errors.New("id is required"))
	}
	return nil
}

func validateQuery(collection, sortField string, dir Direction) error {
	if err := validate("query", collection, "", false); err != nil {
		return err
	}
	if !fieldName.MatchString(sortField) {
		return failure(KindInvalid, "query", collection, "", fmt.Errorf("invalid sort field %q", sortField))
	}
	if dir != Ascending && dir != Descending {
		return failure(KindInvalid, "query", collection, "", fmt.Errorf("invalid direction %q", dir))
	}
	return nil
}
