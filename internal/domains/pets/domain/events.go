package domain

import "time"

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// PetCreated is raised when a new listing is posted.
type PetCreated struct {
	BaseEvent
	PetID    string
	Name     string
	PostedBy string
}

// EventName returns the event type identifier.
func (e PetCreated) EventName() string {
	return "pets.pet.created"
}

// PetStatusChanged is raised whenever the stored status moves.
type PetStatusChanged struct {
	BaseEvent
	PetID      string
	FromStatus Status
	ToStatus   Status
	AdoptedBy  string
}

// EventName returns the event type identifier.
func (e PetStatusChanged) EventName() string {
	return "pets.pet.status_changed"
}

// PetDeleted is raised when a listing is removed.
type PetDeleted struct {
	BaseEvent
	PetID string
	Name  string
}

// EventName returns the event type identifier.
func (e PetDeleted) EventName() string {
	return "pets.pet.deleted"
}
