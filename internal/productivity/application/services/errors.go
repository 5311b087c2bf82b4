package services

import (
	"errors"
	"fmt"
)

// Operation names a lifecycle transition.
type Operation string

const (
	OpComplete   Operation = "complete"
	OpDelete     Operation = "delete"
	OpReschedule Operation = "reschedule"
)

var (
	// ErrInvalidTask is returned when a task has no identity or cannot
	// make the requested transition.
	ErrInvalidTask = errors.New("invalid task")
	// ErrAlreadyProcessing is returned when another operation on the same
	// task is still in flight.
	ErrAlreadyProcessing = errors.New("task is already being processed")
	// ErrStoreFailure matches every *StoreFailure.
	ErrStoreFailure = errors.New("store failure")
)

// StoreFailure wraps an error from the document store or the reminder
// scheduler during a lifecycle operation. It is recoverable; the caller
// may retry.
type StoreFailure struct {
	Op     Operation
	TaskID string
	Err    error
}

func (e *StoreFailure) Error() string {
	return fmt.Sprintf("%s task %s: %v: %v", e.Op, e.TaskID, ErrStoreFailure, e.Err)
}

func (e *StoreFailure) Unwrap() []error {
	return []error{ErrStoreFailure, e.Err}
}
