package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nudge/internal/shared/domain"
)

type taskNoted struct {
	domain.BaseEvent
	Note string `json:"note"`
}

func newTaskNoted(taskID, note string) *taskNoted {
	return &taskNoted{
		BaseEvent: domain.NewBaseEvent(taskID, "Task", "core.task.noted", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
		Note:      note,
	}
}

func TestNewMessage(t *testing.T) {
	t.Run("copies the event header", func(t *testing.T) {
		event := newTaskNoted("task-1", "call back")

		msg, err := NewMessage(event)

		require.NoError(t, err)
		assert.Zero(t, msg.ID)
		assert.Equal(t, event.EventID(), msg.EventID)
		assert.Equal(t, "Task", msg.AggregateType)
		assert.Equal(t, "task-1", msg.AggregateID)
		assert.Equal(t, "core.task.noted", msg.RoutingKey)
		assert.Equal(t, msg.RoutingKey, msg.EventType)
		assert.Equal(t, event.OccurredAt(), msg.CreatedAt)
		assert.Nil(t, msg.PublishedAt)
		assert.Nil(t, msg.DeadLetteredAt)
	})

	t.Run("wraps the event fields in an envelope", func(t *testing.T) {
		event := newTaskNoted("task-7", "payload")
		event.SetMetadata(domain.EventMetadata{UserID: "user-1"})

		msg, err := NewMessage(event)
		require.NoError(t, err)

		var env Envelope
		require.NoError(t, json.Unmarshal(msg.Payload, &env))
		assert.Equal(t, event.EventID(), env.EventID)
		assert.Equal(t, "task-7", env.AggregateID)
		assert.Equal(t, "Task", env.AggregateType)
		assert.Equal(t, "core.task.noted", env.RoutingKey)
		assert.True(t, event.OccurredAt().Equal(env.OccurredAt))
		assert.Equal(t, "user-1", env.Metadata.UserID)
		assert.JSONEq(t, `{"note":"payload"}`, string(env.Data))
	})

	t.Run("keeps the metadata readable", func(t *testing.T) {
		event := newTaskNoted("task-2", "x")
		metadata := domain.EventMetadata{CorrelationID: uuid.New(), CausationID: uuid.New(), UserID: "user-2"}
		event.SetMetadata(metadata)

		msg, err := NewMessage(event)

		require.NoError(t, err)
		assert.Equal(t, metadata, msg.EventMetadata())
	})

	t.Run("converts a batch in order", func(t *testing.T) {
		events := []domain.DomainEvent{newTaskNoted("a", "1"), newTaskNoted("b", "2")}

		msgs, err := NewMessages(events)

		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "a", msgs[0].AggregateID)
		assert.Equal(t, "b", msgs[1].AggregateID)
	})
}

func TestMessage_EventMetadata(t *testing.T) {
	t.Run("missing metadata is the zero value", func(t *testing.T) {
		assert.Equal(t, domain.EventMetadata{}, (&Message{}).EventMetadata())
	})

	t.Run("unreadable metadata is the zero value", func(t *testing.T) {
		msg := &Message{Metadata: json.RawMessage(`not json`)}

		assert.Equal(t, domain.EventMetadata{}, msg.EventMetadata())
	})
}

func TestDecodeEnvelope(t *testing.T) {
	t.Run("reads back what NewMessage wrote", func(t *testing.T) {
		event := newTaskNoted("task-3", "decoded")
		event.SetMetadata(domain.EventMetadata{UserID: "user-3"})
		msg, err := NewMessage(event)
		require.NoError(t, err)

		env, err := DecodeEnvelope(msg.Payload)

		require.NoError(t, err)
		assert.Equal(t, event.EventID(), env.EventID)
		assert.Equal(t, "task-3", env.AggregateID)
		assert.Equal(t, "core.task.noted", env.RoutingKey)
		assert.Equal(t, "user-3", env.Metadata.UserID)
		assert.JSONEq(t, `{"note":"decoded"}`, string(env.Data))
	})

	t.Run("rejects a payload that is not an envelope", func(t *testing.T) {
		_, err := DecodeEnvelope([]byte(`[1,2`))

		assert.Error(t, err)
	})
}
