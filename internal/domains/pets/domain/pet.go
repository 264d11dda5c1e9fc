package domain

import (
	"errors"
	"strings"
)

// Status represents where a pet is in the adoption lifecycle.
type Status string

const (
	StatusAvailable    Status = "Available"
	StatusPending      Status = "Pending"
	StatusAdopted      Status = "Adopted"
	StatusNotAvailable Status = "Not Available"
)

// Species lists the kinds of animals the marketplace accepts.
type Species string

const (
	SpeciesDog    Species = "Dog"
	SpeciesCat    Species = "Cat"
	SpeciesBird   Species = "Bird"
	SpeciesRabbit Species = "Rabbit"
	SpeciesOther  Species = "Other"
)

type AgeUnit string

const (
	AgeUnitMonths AgeUnit = "months"
	AgeUnitYears  AgeUnit = "years"
)

type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "Unknown"
)

type Size string

const (
	SizeSmall  Size = "Small"
	SizeMedium Size = "Medium"
	SizeLarge  Size = "Large"
)

// Location is where the pet can be picked up.
type Location struct {
	City    string
	State   string
	Country string
}

// Health summarises veterinary information shared with applicants.
type Health struct {
	Vaccinated     bool
	SpayedNeutered bool
	Notes          string
}

// Profile groups the descriptive attributes of a listing. Status is deliberately absent:
// it only moves through the adoption rules or an explicit manual hold.
type Profile struct {
	Name         string
	Species      Species
	Breed        string
	Age          int
	AgeUnit      AgeUnit
	Gender       Gender
	Size         Size
	Color        string
	Description  string
	Images       []string
	Location     Location
	Health       Health
	SpecialNeeds []string
	AdoptionFee  float64
}

// Pet is the aggregate managed by the pets bounded context.
type Pet struct {
	ID       string
	Profile  Profile
	Status   Status
	PostedBy string
	// AdoptedBy is set only while Status is Adopted.
	AdoptedBy string
}

var (
	ErrEmptyName        = errors.New("pet name is required")
	ErrInvalidSpecies   = errors.New("pet type must be one of Dog, Cat, Bird, Rabbit, Other")
	ErrInvalidAge       = errors.New("pet age must be greater or equal to zero")
	ErrInvalidAgeUnit   = errors.New("age unit must be months or years")
	ErrInvalidGender    = errors.New("gender must be Male, Female or Unknown")
	ErrInvalidSize      = errors.New("size must be Small, Medium or Large")
	ErrEmptyDescription = errors.New("pet description is required")
	ErrInvalidFee       = errors.New("adoption fee must be greater or equal to zero")
	ErrMissingPoster    = errors.New("pet must reference the user who posted it")
	ErrInvalidStatus    = errors.New("unknown pet status")
	ErrNotAvailable     = errors.New("pet is not available for adoption")
)

// NewPet validates the profile and builds an Available listing.
func NewPet(id, postedBy string, profile Profile) (*Pet, error) {
	if strings.TrimSpace(postedBy) == "" {
		return nil, ErrMissingPoster
	}
	p := &Pet{ID: id, PostedBy: postedBy, Status: StatusAvailable}
	if err := p.UpdateProfile(profile); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProfile replaces every descriptive attribute after validation.
func (p *Pet) UpdateProfile(profile Profile) error {
	normalized, err := normalizeProfile(profile)
	if err != nil {
		return err
	}
	p.Profile = normalized
	return nil
}

// MarkPending reserves an Available pet for a freshly submitted application.
func (p *Pet) MarkPending() error {
	if !p.IsAvailable() {
		return ErrNotAvailable
	}
	p.Status = StatusPending
	p.AdoptedBy = ""
	return nil
}

// ApplyDerivedStatus stores a status computed from the pet's adoptions. adopter is kept
// only when the pet ends up Adopted.
func (p *Pet) ApplyDerivedStatus(status Status, adopter string) error {
	switch status {
	case StatusAvailable, StatusPending:
		p.Status = status
		p.AdoptedBy = ""
	case StatusAdopted:
		p.Status = status
		p.AdoptedBy = adopter
	default:
		return ErrInvalidStatus
	}
	return nil
}

// HoldManually takes the pet off the market until an admin releases it.
func (p *Pet) HoldManually() {
	p.Status = StatusNotAvailable
	p.AdoptedBy = ""
}

// OnHold reports whether an admin has taken the pet off the market.
func (p *Pet) OnHold() bool {
	return p.Status == StatusNotAvailable
}

// IsAvailable reports whether new applications may be submitted.
func (p *Pet) IsAvailable() bool {
	return p.Status == StatusAvailable
}

// ParseStatus validates a status coming from an outer layer.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusAvailable, StatusPending, StatusAdopted, StatusNotAvailable:
		return Status(value), nil
	}
	return "", ErrInvalidStatus
}

func normalizeProfile(profile Profile) (Profile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return Profile{}, ErrEmptyName
	}
	switch profile.Species {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesOther:
	default:
		return Profile{}, ErrInvalidSpecies
	}
	if profile.Age < 0 {
		return Profile{}, ErrInvalidAge
	}
	if profile.AgeUnit == "" {
		profile.AgeUnit = AgeUnitMonths
	}
	if profile.AgeUnit != AgeUnitMonths && profile.AgeUnit != AgeUnitYears {
		return Profile{}, ErrInvalidAgeUnit
	}
	switch profile.Gender {
	case GenderMale, GenderFemale, GenderUnknown:
	default:
		return Profile{}, ErrInvalidGender
	}
	switch profile.Size {
	case SizeSmall, SizeMedium, SizeLarge:
	default:
		return Profile{}, ErrInvalidSize
	}
	profile.Description = strings.TrimSpace(profile.Description)
	if profile.Description == "" {
		return Profile{}, ErrEmptyDescription
	}
	if profile.AdoptionFee < 0 {
		return Profile{}, ErrInvalidFee
	}
	profile.Breed = strings.TrimSpace(profile.Breed)
	profile.Images = cloneStrings(profile.Images)
	profile.SpecialNeeds = cloneStrings(profile.SpecialNeeds)
	return profile, nil
}

// Clone returns a deep copy safe to hand across layers.
func (p *Pet) Clone() *Pet {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Profile.Images = cloneStrings(p.Profile.Images)
	clone.Profile.SpecialNeeds = cloneStrings(p.Profile.SpecialNeeds)
	return &clone
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return append([]string{}, values...)
}
