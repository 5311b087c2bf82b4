package reminders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
)

// DefaultRedisPrefix namespaces reminder keys.
const DefaultRedisPrefix = "nudge:reminders"

// RedisScheduler books reminders in a Redis sorted set scored by due time
// in unix milliseconds, with one hash per reminder for its details.
type RedisScheduler struct {
	client *redis.Client
	prefix string
	userID string
	clock  func() time.Time
}

// NewRedisScheduler creates a scheduler for the user's reminders.
func NewRedisScheduler(client *redis.Client, prefix, userID string, clock func() time.Time) *RedisScheduler {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if clock == nil {
		clock = time.Now
	}
	return &RedisScheduler{client: client, prefix: prefix, userID: userID, clock: clock}
}

func (s *RedisScheduler) queueKey() string {
	return s.prefix + ":due"
}

func (s *RedisScheduler) reminderKey(id string) string {
	return s.prefix + ":" + id
}

// ScheduleReminder books a reminder after the interval.
func (s *RedisScheduler) ScheduleReminder(ctx context.Context, taskID string, after value_objects.ReminderInterval) (task.Reminder, error) {
	id := uuid.NewString()
	dueAt := s.clock().Add(after.Duration())

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.reminderKey(id),
			"taskId", taskID,
			"userId", s.userID,
			"dueAt", dueAt.UnixMilli(),
		)
		pipe.ZAdd(ctx, s.queueKey(), redis.Z{Score: float64(dueAt.UnixMilli()), Member: id})
		return nil
	})
	if err != nil {
		return task.Reminder{}, fmt.Errorf("schedule reminder: %w", err)
	}
	return task.Reminder{NotificationID: id, NextReminderAt: dueAt}, nil
}

// CancelReminder drops a reminder. Unknown ids are ignored.
func (s *RedisScheduler) CancelReminder(ctx context.Context, notificationID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, s.queueKey(), notificationID)
		pipe.Del(ctx, s.reminderKey(notificationID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cancel reminder: %w", err)
	}
	return nil
}

// TakeDue claims reminders due at or before now. ZREM decides the claim,
// so concurrent workers never take the same reminder twice.
func (s *RedisScheduler) TakeDue(ctx context.Context, now time.Time) ([]Due, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.queueKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}

	var due []Due
	for _, id := range ids {
		removed, err := s.client.ZRem(ctx, s.queueKey(), id).Result()
		if err != nil {
			return due, fmt.Errorf("claim reminder %s: %w", id, err)
		}
		if removed == 0 {
			continue
		}

		fields, err := s.client.HGetAll(ctx, s.reminderKey(id)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return due, fmt.Errorf("read reminder %s: %w", id, err)
		}
		s.client.Del(ctx, s.reminderKey(id))

		d := Due{NotificationID: id, TaskID: fields["taskId"], UserID: fields["userId"]}
		if ms, err := strconv.ParseInt(fields["dueAt"], 10, 64); err == nil {
			d.DueAt = time.UnixMilli(ms)
		}
		due = append(due, d)
	}
	return due, nil
}
