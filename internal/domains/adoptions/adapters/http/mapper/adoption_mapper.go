package mapper

import (
	"time"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	petmapper "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/http/mapper"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
)

type ApplicantInfo struct {
	LivingSituation    string `json:"livingSituation"`
	HasOtherPets       bool   `json:"hasOtherPets"`
	ExperienceWithPets string `json:"experienceWithPets"`
	ReasonForAdoption  string `json:"reasonForAdoption"`
	AgreeToTerms       bool   `json:"agreeToTerms"`
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

type ContactInfo struct {
	Phone   string  `json:"phone,omitempty"`
	Email   string  `json:"email,omitempty"`
	Address Address `json:"address"`
}

// SubmitRequest is the body of POST /api/adoptions.
type SubmitRequest struct {
	PetID         string        `json:"petId" binding:"required"`
	ApplicantInfo ApplicantInfo `json:"applicantInfo"`
	ContactInfo   *ContactInfo  `json:"contactInfo,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// DecisionRequest is the body of PUT /api/adoptions/:id/status.
type DecisionRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes,omitempty"`
}

// Adoption is the HTTP representation of an application.
type Adoption struct {
	ID              string         `json:"id"`
	PetID           string         `json:"petId"`
	ApplicantID     string         `json:"applicantId"`
	Status          string         `json:"status"`
	ApplicationDate time.Time      `json:"applicationDate"`
	ReviewDate      *time.Time     `json:"reviewDate,omitempty"`
	ReviewedBy      string         `json:"reviewedBy,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	ApplicantInfo   ApplicantInfo  `json:"applicantInfo"`
	ContactInfo     ContactInfo    `json:"contactInfo"`
	Pet             *petmapper.Pet `json:"pet,omitempty"`
	CreatedAt       *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time     `json:"updatedAt,omitempty"`
}

// ToApplicantInfoInput converts the questionnaire.
func ToApplicantInfoInput(in ApplicantInfo) adoptiontypes.ApplicantInfoInput {
	return adoptiontypes.ApplicantInfoInput{
		LivingSituation:    in.LivingSituation,
		HasOtherPets:       in.HasOtherPets,
		ExperienceWithPets: in.ExperienceWithPets,
		ReasonForAdoption:  in.ReasonForAdoption,
		AgreeToTerms:       in.AgreeToTerms,
	}
}

// ToContactInfoInput converts optional contact details.
func ToContactInfoInput(in *ContactInfo) *adoptiontypes.ContactInfoInput {
	if in == nil {
		return nil
	}
	return &adoptiontypes.ContactInfoInput{
		Phone:   in.Phone,
		Email:   in.Email,
		Street:  in.Address.Street,
		City:    in.Address.City,
		State:   in.Address.State,
		ZipCode: in.Address.ZipCode,
	}
}

// FromProjection converts an application, embedding its pet when known.
func FromProjection(proj *adoptiontypes.AdoptionProjection, pet *pettypes.PetProjection) Adoption {
	if proj == nil || proj.Adoption == nil {
		return Adoption{}
	}
	a := proj.Adoption
	out := Adoption{
		ID:              a.ID,
		PetID:           a.PetID,
		ApplicantID:     a.ApplicantID,
		Status:          string(a.Status),
		ApplicationDate: a.ApplicationDate,
		ReviewDate:      a.ReviewDate,
		ReviewedBy:      a.ReviewedBy,
		Notes:           a.Notes,
		ApplicantInfo: ApplicantInfo{
			LivingSituation:    a.ApplicantInfo.LivingSituation,
			HasOtherPets:       a.ApplicantInfo.HasOtherPets,
			ExperienceWithPets: a.ApplicantInfo.ExperienceWithPets,
			ReasonForAdoption:  a.ApplicantInfo.ReasonForAdoption,
			AgreeToTerms:       a.ApplicantInfo.AgreeToTerms,
		},
		ContactInfo: ContactInfo{
			Phone: a.ContactInfo.Phone,
			Email: a.ContactInfo.Email,
			Address: Address{
				Street:  a.ContactInfo.Address.Street,
				City:    a.ContactInfo.Address.City,
				State:   a.ContactInfo.Address.State,
				ZipCode: a.ContactInfo.Address.ZipCode,
			},
		},
	}
	if pet != nil && pet.Pet != nil {
		mapped := petmapper.FromProjection(pet)
		out.Pet = &mapped
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

// FromProjections maps a list without embedded pets.
func FromProjections(list []*adoptiontypes.AdoptionProjection) []Adoption {
	result := make([]Adoption, 0, len(list))
	for _, proj := range list {
		if proj == nil {
			continue
		}
		result = append(result, FromProjection(proj, nil))
	}
	return result
}
