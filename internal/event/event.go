// Package event defines the mutation event record (§3, §4.5): a single
// CREATE/UPDATE/DELETE notification carrying defensively-cloned before/
// after entity snapshots so subscribers can't mutate engine state through
// a received event.
package event

import (
	"time"

	"github.com/parquedb/parquedb/internal/entity"
)

// Kind discriminates the mutation an Event records.
type Kind string

const (
	KindCreate Kind = "CREATE"
	KindUpdate Kind = "UPDATE"
	KindDelete Kind = "DELETE"
)

// Event is an immutable record of one mutation. Before/After are deep
// clones taken at emission time (§9's "no identity-shared structure
// crosses the event boundary" design note) - mutating a field on an
// Event's Before/After never affects the entity the engine holds, and
// vice versa.
type Event struct {
	Kind       Kind
	Namespace  string
	Collection string
	EntityID   string
	Target     string // "<namespace>:<id>"
	Actor      string
	Before     *entity.Entity
	After      *entity.Entity
	OccurredAt time.Time
}

// NewCreate builds a CREATE event for after, cloning it so the event
// can't be used to mutate the entity the caller still holds a reference
// to.
func NewCreate(after *entity.Entity, actor, target string, occurredAt time.Time) Event {
	return Event{
		Kind:       KindCreate,
		Namespace:  after.Namespace,
		Collection: after.Collection,
		EntityID:   after.ID,
		Target:     target,
		Actor:      actor,
		After:      after.Clone(),
		OccurredAt: occurredAt,
	}
}

// NewUpdate builds an UPDATE event, cloning both snapshots.
func NewUpdate(before, after *entity.Entity, actor, target string, occurredAt time.Time) Event {
	return Event{
		Kind:       KindUpdate,
		Namespace:  after.Namespace,
		Collection: after.Collection,
		EntityID:   after.ID,
		Target:     target,
		Actor:      actor,
		Before:     before.Clone(),
		After:      after.Clone(),
		OccurredAt: occurredAt,
	}
}

// NewDelete builds a DELETE event for before, cloning it.
func NewDelete(before *entity.Entity, actor, target string, occurredAt time.Time) Event {
	return Event{
		Kind:       KindDelete,
		Namespace:  before.Namespace,
		Collection: before.Collection,
		EntityID:   before.ID,
		Target:     target,
		Actor:      actor,
		Before:     before.Clone(),
		OccurredAt: occurredAt,
	}
}
