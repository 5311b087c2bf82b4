package outbox

import (
	"context"
	"time"
)

// Repository stores outbox rows. Save and SaveBatch join the transaction in
// ctx, so events land atomically with the task write that raised them.
type Repository interface {
	Save(ctx context.Context, msg *Message) error
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns up to limit live messages whose retry time has
	// passed, oldest first.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error
	// MarkFailed bumps the retry count and defers the message to nextRetryAt.
	MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error
	// MarkDead parks a message so the processor never picks it up again.
	MarkDead(ctx context.Context, id int64, reason string) error

	// DeleteOld prunes published messages older than the given age in days.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
