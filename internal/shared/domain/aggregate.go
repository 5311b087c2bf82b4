// Package domain holds the aggregate and event plumbing shared by every
// bounded context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps. A zero createdAt means the
// stored value was missing or unreadable.
type BaseEntity struct {
	id        string
	createdAt time.Time
	updatedAt time.Time
}

// NewBaseEntity creates an entity with a fresh uuid, created at now.
func NewBaseEntity(now time.Time) BaseEntity {
	return BaseEntity{id: uuid.NewString(), createdAt: now, updatedAt: now}
}

// RehydrateBaseEntity recreates an entity from persisted state.
func RehydrateBaseEntity(id string, createdAt, updatedAt time.Time) BaseEntity {
	return BaseEntity{id: id, createdAt: createdAt, updatedAt: updatedAt}
}

func (e BaseEntity) ID() string           { return e.id }
func (e BaseEntity) CreatedAt() time.Time { return e.createdAt }
func (e BaseEntity) UpdatedAt() time.Time { return e.updatedAt }

// BaseAggregateRoot records domain events until the repository has
// written them to the outbox, and counts mutations in Version.
type BaseAggregateRoot struct {
	BaseEntity
	events  []DomainEvent
	version int
}

// NewBaseAggregateRoot creates an aggregate at version 0.
func NewBaseAggregateRoot(now time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(now)}
}

// RehydrateBaseAggregateRoot recreates an aggregate with no pending events.
func RehydrateBaseAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, version: version}
}

// Touch marks a mutation at now.
func (a *BaseAggregateRoot) Touch(now time.Time) {
	a.updatedAt = now
	a.version++
}

func (a *BaseAggregateRoot) Version() int { return a.version }

// DomainEvents returns the events not yet written to the outbox.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.events
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// ClearDomainEvents is called once the events are in the outbox.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.events = nil
}
