package types

import "github.com/Apurer/pet-adoption-api/internal/shared/actor"

// LocationInput is the optional location payload of a pet mutation.
type LocationInput struct {
	City    string
	State   string
	Country string
}

// HealthInput is the optional health payload of a pet mutation.
type HealthInput struct {
	Vaccinated     bool
	SpayedNeutered bool
	Notes          string
}

// PetMutationInput carries the descriptive fields of a listing. Nil pointers mean
// "leave untouched" on update. There is no status field: status moves only through
// adoptions or the manual status use case.
type PetMutationInput struct {
	Name         *string
	Species      *string
	Breed        *string
	Age          *int
	AgeUnit      *string
	Gender       *string
	Size         *string
	Color        *string
	Description  *string
	Images       *[]string
	Location     *LocationInput
	Health       *HealthInput
	SpecialNeeds *[]string
	AdoptionFee  *float64
}

// CreatePetInput captures the request to post a new listing.
type CreatePetInput struct {
	Actor actor.Actor
	PetMutationInput
}

// UpdatePetInput applies a partial update to an existing listing.
type UpdatePetInput struct {
	Actor actor.Actor
	ID    string
	PetMutationInput
}
