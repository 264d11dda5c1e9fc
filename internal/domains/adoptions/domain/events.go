package domain

import "time"

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AdoptionSubmitted is raised when an applicant opens an application.
type AdoptionSubmitted struct {
	BaseEvent
	AdoptionID  string
	PetID       string
	ApplicantID string
}

func (e AdoptionSubmitted) EventName() string {
	return "adoptions.adoption.submitted"
}

// AdoptionDecided is raised for every admin decision, including re-decisions.
type AdoptionDecided struct {
	BaseEvent
	AdoptionID     string
	PetID          string
	ApplicantID    string
	PreviousStatus Status
	Status         Status
	ReviewedBy     string
}

func (e AdoptionDecided) EventName() string {
	return "adoptions.adoption.decided"
}

// AdoptionCancelled is raised when the applicant withdraws.
type AdoptionCancelled struct {
	BaseEvent
	AdoptionID  string
	PetID       string
	ApplicantID string
}

func (e AdoptionCancelled) EventName() string {
	return "adoptions.adoption.cancelled"
}

// ApplicantNotified is raised once the applicant has been told about a decision.
type ApplicantNotified struct {
	BaseEvent
	AdoptionID  string
	PetID       string
	ApplicantID string
	Status      Status
}

func (e ApplicantNotified) EventName() string {
	return "adoptions.applicant.notified"
}

// NewApplicantNotified builds the notification for the current state of a.
func NewApplicantNotified(a *Adoption, at time.Time) ApplicantNotified {
	return ApplicantNotified{
		BaseEvent:   BaseEvent{Timestamp: at},
		AdoptionID:  a.ID,
		PetID:       a.PetID,
		ApplicantID: a.ApplicantID,
		Status:      a.Status,
	}
}
