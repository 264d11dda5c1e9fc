package mapper

import (
	"time"

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
)

// Location is the HTTP representation of where a pet lives.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// HealthStatus is the HTTP representation of veterinary information.
type HealthStatus struct {
	Vaccinated     bool   `json:"vaccinated"`
	SpayedNeutered bool   `json:"spayedNeutered"`
	HealthNotes    string `json:"healthNotes,omitempty"`
}

// MutationPet captures inbound payloads for create/update flows while preserving field presence.
// A status field sent by clients is ignored: status has its own endpoint.
type MutationPet struct {
	Name         *string       `json:"name,omitempty"`
	Type         *string       `json:"type,omitempty"`
	Breed        *string       `json:"breed,omitempty"`
	Age          *int          `json:"age,omitempty"`
	AgeUnit      *string       `json:"ageUnit,omitempty"`
	Gender       *string       `json:"gender,omitempty"`
	Size         *string       `json:"size,omitempty"`
	Color        *string       `json:"color,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Images       *[]string     `json:"images,omitempty"`
	Location     *Location     `json:"location,omitempty"`
	HealthStatus *HealthStatus `json:"healthStatus,omitempty"`
	SpecialNeeds *[]string     `json:"specialNeeds,omitempty"`
	AdoptionFee  *float64      `json:"adoptionFee,omitempty"`
}

// Pet is the HTTP representation of a listing.
type Pet struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	Breed        string       `json:"breed,omitempty"`
	Age          int          `json:"age"`
	AgeUnit      string       `json:"ageUnit"`
	Gender       string       `json:"gender"`
	Size         string       `json:"size"`
	Color        string       `json:"color,omitempty"`
	Description  string       `json:"description"`
	Images       []string     `json:"images"`
	Status       string       `json:"status"`
	Location     Location     `json:"location"`
	HealthStatus HealthStatus `json:"healthStatus"`
	SpecialNeeds []string     `json:"specialNeeds"`
	AdoptionFee  float64      `json:"adoptionFee"`
	PostedBy     string       `json:"postedBy"`
	AdoptedBy    string       `json:"adoptedBy,omitempty"`
	CreatedAt    *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time   `json:"updatedAt,omitempty"`
}

// PetPage mirrors the paging envelope returned by the catalogue.
type PetPage struct {
	Pets        []Pet `json:"pets"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Total       int64 `json:"total"`
}

// StatusChange is the body of the manual status endpoint.
type StatusChange struct {
	Status string `json:"status" binding:"required"`
}

// ToMutationInput converts the transport payload into the application input.
func ToMutationInput(p MutationPet) pettypes.PetMutationInput {
	input := pettypes.PetMutationInput{
		Name:         p.Name,
		Species:      p.Type,
		Breed:        p.Breed,
		Age:          p.Age,
		AgeUnit:      p.AgeUnit,
		Gender:       p.Gender,
		Size:         p.Size,
		Color:        p.Color,
		Description:  p.Description,
		Images:       p.Images,
		SpecialNeeds: p.SpecialNeeds,
		AdoptionFee:  p.AdoptionFee,
	}
	if p.Location != nil {
		input.Location = &pettypes.LocationInput{City: p.Location.City, State: p.Location.State, Country: p.Location.Country}
	}
	if p.HealthStatus != nil {
		input.Health = &pettypes.HealthInput{
			Vaccinated:     p.HealthStatus.Vaccinated,
			SpayedNeutered: p.HealthStatus.SpayedNeutered,
			Notes:          p.HealthStatus.HealthNotes,
		}
	}
	return input
}

// FromProjection converts a persisted aggregate into its HTTP representation.
func FromProjection(proj *pettypes.PetProjection) Pet {
	if proj == nil || proj.Pet == nil {
		return Pet{}
	}
	p := proj.Pet
	out := Pet{
		ID:          p.ID,
		Name:        p.Profile.Name,
		Type:        string(p.Profile.Species),
		Breed:       p.Profile.Breed,
		Age:         p.Profile.Age,
		AgeUnit:     string(p.Profile.AgeUnit),
		Gender:      string(p.Profile.Gender),
		Size:        string(p.Profile.Size),
		Color:       p.Profile.Color,
		Description: p.Profile.Description,
		Images:      nonNil(p.Profile.Images),
		Status:      string(p.Status),
		Location: Location{
			City:    p.Profile.Location.City,
			State:   p.Profile.Location.State,
			Country: p.Profile.Location.Country,
		},
		HealthStatus: HealthStatus{
			Vaccinated:     p.Profile.Health.Vaccinated,
			SpayedNeutered: p.Profile.Health.SpayedNeutered,
			HealthNotes:    p.Profile.Health.Notes,
		},
		SpecialNeeds: nonNil(p.Profile.SpecialNeeds),
		AdoptionFee:  p.Profile.AdoptionFee,
		PostedBy:     p.PostedBy,
		AdoptedBy:    p.AdoptedBy,
	}
	if !proj.Metadata.CreatedAt.IsZero() {
		created := proj.Metadata.CreatedAt
		out.CreatedAt = &created
	}
	if !proj.Metadata.UpdatedAt.IsZero() {
		updated := proj.Metadata.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}

// FromProjections maps a slice.
func FromProjections(list []*pettypes.PetProjection) []Pet {
	result := make([]Pet, 0, len(list))
	for _, proj := range list {
		if proj == nil {
			continue
		}
		result = append(result, FromProjection(proj))
	}
	return result
}

// FromPage wraps a catalogue page.
func FromPage(page *pettypes.PetPage) PetPage {
	if page == nil {
		return PetPage{Pets: []Pet{}}
	}
	return PetPage{
		Pets:        FromProjections(page.Items),
		TotalPages:  page.TotalPages,
		CurrentPage: page.Page,
		Total:       page.Total,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string{}, values...)
}
