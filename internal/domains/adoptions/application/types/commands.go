package types

import (
	"context"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
)

// ApplicantInfoInput is the questionnaire part of a submission.
type ApplicantInfoInput struct {
	LivingSituation    string
	HasOtherPets       bool
	ExperienceWithPets string
	ReasonForAdoption  string
	AgreeToTerms       bool
}

// ContactInfoInput is optional; omitted fields fall back to the applicant's profile.
type ContactInfoInput struct {
	Phone   string
	Email   string
	Street  string
	City    string
	State   string
	ZipCode string
}

// SubmitInput opens an application for a pet.
type SubmitInput struct {
	Actor          actor.Actor
	PetID          string
	ApplicantInfo  ApplicantInfoInput
	ContactInfo    *ContactInfoInput
	Notes          string
	IdempotencyKey string
	// Admit runs once the request is known not to be an idempotent replay and may
	// refuse it, e.g. when the caller is over its submission rate.
	Admit func(ctx context.Context) error
}

// DecideInput is an admin decision on an application.
type DecideInput struct {
	Actor      actor.Actor
	AdoptionID string
	Status     string
	Notes      string
}

// CancelInput withdraws an application.
type CancelInput struct {
	Actor      actor.Actor
	AdoptionID string
}

// ManualStatusInput holds or releases a pet by hand.
type ManualStatusInput struct {
	Actor  actor.Actor
	PetID  string
	Status string
}

// ReconcileInput re-derives one pet, or every pet when PetID is empty.
type ReconcileInput struct {
	Actor actor.Actor
	PetID string
}

// GetAdoptionInput reads one application.
type GetAdoptionInput struct {
	Actor      actor.Actor
	AdoptionID string
}

// ListAdoptionsInput lists applications visible to the actor. Filters apply to admins only;
// regular users always see exactly their own applications.
type ListAdoptionsInput struct {
	Actor  actor.Actor
	Status string
	PetID  string
}

// ToDomain converts the questionnaire.
func (in ApplicantInfoInput) ToDomain() domain.ApplicantInfo {
	return domain.ApplicantInfo{
		LivingSituation:    in.LivingSituation,
		HasOtherPets:       in.HasOtherPets,
		ExperienceWithPets: in.ExperienceWithPets,
		ReasonForAdoption:  in.ReasonForAdoption,
		AgreeToTerms:       in.AgreeToTerms,
	}
}
