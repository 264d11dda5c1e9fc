// Package projection pairs aggregates with the timestamps their stores keep.
package projection

import "time"

// Metadata holds store-managed timestamps, always in UTC.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMetadata normalises both timestamps to UTC. Drivers such as sqlite hand back
// local times, so every store goes through here.
func NewMetadata(createdAt, updatedAt time.Time) Metadata {
	return Metadata{CreatedAt: createdAt.UTC(), UpdatedAt: updatedAt.UTC()}
}

// Created returns metadata for a record first written at ts.
func Created(ts time.Time) Metadata {
	return NewMetadata(ts, ts)
}

// Touch keeps CreatedAt and moves UpdatedAt to ts.
func (m Metadata) Touch(ts time.Time) Metadata {
	return NewMetadata(m.CreatedAt, ts)
}

// Projection is an aggregate as read back from a store.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}
