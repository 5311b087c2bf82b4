package observability

import (
	"context"

	"github.com/google/uuid"
)

// Log attribute names for the ids carried in a context.
const (
	CorrelationIDKey = "correlation_id"
	UserIDKey        = "user_id"
)

type ctxKey int

const (
	correlationIDCtxKey ctxKey = iota
	userIDCtxKey
)

// WithCorrelationID tags ctx with id, generating one when id is empty.
// One correlation id spans a CLI command, an MCP request or a worker tick.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, correlationIDCtxKey, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDCtxKey)
}

// WithUserID tags ctx with the user whose tasks are being ranked.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, userIDCtxKey)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
