// Package application holds the pieces every use case shares: command and
// query contracts, the unit of work and event metadata.
package application

import "context"

// Command asks for a state change, such as creating or completing a task.
type Command interface {
	CommandName() string
}

// CommandHandler executes one command type.
type CommandHandler[C Command] interface {
	Handle(ctx context.Context, cmd C) error
}

// Query reads state without changing it.
type Query interface {
	QueryName() string
}

// QueryHandler answers one query type.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
