package types

import "github.com/Apurer/pet-adoption-api/internal/shared/actor"

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

// PetIdentifier references a pet by its aggregate ID.
type PetIdentifier struct {
	ID string
}

// DeletePetInput removes a listing on behalf of an admin.
type DeletePetInput struct {
	Actor actor.Actor
	ID    string
}

// ListPetsInput filters the public catalogue. Empty values do not filter.
type ListPetsInput struct {
	Species  string
	Gender   string
	Size     string
	Status   string
	City     string
	PostedBy string
	MinAge   *int
	MaxAge   *int
	Search   string
	Page     int
	Limit    int
}

// Normalize applies paging defaults and bounds.
func (in ListPetsInput) Normalize() ListPetsInput {
	if in.Page < 1 {
		in.Page = DefaultPage
	}
	if in.Limit < 1 {
		in.Limit = DefaultLimit
	}
	if in.Limit > MaxLimit {
		in.Limit = MaxLimit
	}
	return in
}

// Offset is the number of rows skipped for the current page.
func (in ListPetsInput) Offset() int {
	return (in.Page - 1) * in.Limit
}
