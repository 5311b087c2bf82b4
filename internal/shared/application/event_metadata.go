package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/nudge/internal/shared/domain"
	"github.com/felixgeelhaar/nudge/pkg/observability"
)

// NewEventMetadata stamps events raised for userID. The correlation id is
// taken from ctx when the caller set one, so every event of one CLI command
// or MCP request shares it.
func NewEventMetadata(ctx context.Context, userID string) domain.EventMetadata {
	correlationID, err := uuid.Parse(observability.CorrelationIDFromContext(ctx))
	if err != nil {
		correlationID = uuid.New()
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   uuid.New(),
		UserID:        userID,
	}
}

// ApplyEventMetadata sets metadata on every event that accepts it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if e, ok := event.(interface{ SetMetadata(domain.EventMetadata) }); ok {
			e.SetMetadata(metadata)
		}
	}
}
