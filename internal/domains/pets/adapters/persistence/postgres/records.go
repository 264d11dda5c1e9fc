package postgres

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

// stringArray stores as a native text[] on PostgreSQL and as the same array literal in a
// text column elsewhere, so repository tests can run on SQLite.
type stringArray pq.StringArray

func (a stringArray) Value() (driver.Value, error) { return pq.StringArray(a).Value() }

func (a *stringArray) Scan(src any) error { return (*pq.StringArray)(a).Scan(src) }

func (stringArray) GormDataType() string { return "text" }

func (stringArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

type petRecord struct {
	ID             string      `gorm:"primaryKey;column:id;type:varchar(36)"`
	Name           string      `gorm:"column:name;not null"`
	Species        string      `gorm:"column:species;type:varchar(16);index"`
	Breed          string      `gorm:"column:breed"`
	Age            int         `gorm:"column:age"`
	AgeUnit        string      `gorm:"column:age_unit;type:varchar(8)"`
	Gender         string      `gorm:"column:gender;type:varchar(8);index"`
	Size           string      `gorm:"column:size;type:varchar(8);index"`
	Color          string      `gorm:"column:color"`
	Description    string      `gorm:"column:description"`
	Images         stringArray `gorm:"column:images"`
	Status         string      `gorm:"column:status;type:varchar(16);index"`
	City           string      `gorm:"column:city"`
	State          string      `gorm:"column:state"`
	Country        string      `gorm:"column:country"`
	Vaccinated     bool        `gorm:"column:vaccinated"`
	SpayedNeutered bool        `gorm:"column:spayed_neutered"`
	HealthNotes    string      `gorm:"column:health_notes"`
	SpecialNeeds   stringArray `gorm:"column:special_needs"`
	AdoptionFee    float64     `gorm:"column:adoption_fee"`
	PostedBy       string      `gorm:"column:posted_by;type:varchar(36);index"`
	AdoptedBy      string      `gorm:"column:adopted_by;type:varchar(36)"`
	CreatedAt      time.Time   `gorm:"column:created_at;index"`
	UpdatedAt      time.Time   `gorm:"column:updated_at"`
}

func (petRecord) TableName() string { return "pets" }

func newPetRecord(p *domain.Pet) petRecord {
	profile := p.Profile
	return petRecord{
		ID:             p.ID,
		Name:           profile.Name,
		Species:        string(profile.Species),
		Breed:          profile.Breed,
		Age:            profile.Age,
		AgeUnit:        string(profile.AgeUnit),
		Gender:         string(profile.Gender),
		Size:           string(profile.Size),
		Color:          profile.Color,
		Description:    profile.Description,
		Images:         copyStringArray(profile.Images),
		Status:         string(p.Status),
		City:           profile.Location.City,
		State:          profile.Location.State,
		Country:        profile.Location.Country,
		Vaccinated:     profile.Health.Vaccinated,
		SpayedNeutered: profile.Health.SpayedNeutered,
		HealthNotes:    profile.Health.Notes,
		SpecialNeeds:   copyStringArray(profile.SpecialNeeds),
		AdoptionFee:    profile.AdoptionFee,
		PostedBy:       p.PostedBy,
		AdoptedBy:      p.AdoptedBy,
	}
}

func (r *petRecord) toDomain() *domain.Pet {
	if r == nil {
		return nil
	}
	pet := &domain.Pet{
		ID:        r.ID,
		Status:    domain.Status(r.Status),
		PostedBy:  r.PostedBy,
		AdoptedBy: r.AdoptedBy,
		Profile: domain.Profile{
			Name:        r.Name,
			Species:     domain.Species(r.Species),
			Breed:       r.Breed,
			Age:         r.Age,
			AgeUnit:     domain.AgeUnit(r.AgeUnit),
			Gender:      domain.Gender(r.Gender),
			Size:        domain.Size(r.Size),
			Color:       r.Color,
			Description: r.Description,
			Location:    domain.Location{City: r.City, State: r.State, Country: r.Country},
			Health: domain.Health{
				Vaccinated:     r.Vaccinated,
				SpayedNeutered: r.SpayedNeutered,
				Notes:          r.HealthNotes,
			},
			AdoptionFee: r.AdoptionFee,
		},
	}
	if len(r.Images) > 0 {
		pet.Profile.Images = append([]string{}, r.Images...)
	}
	if len(r.SpecialNeeds) > 0 {
		pet.Profile.SpecialNeeds = append([]string{}, r.SpecialNeeds...)
	}
	return pet
}

func copyStringArray(values []string) stringArray {
	if len(values) == 0 {
		return nil
	}
	return append(stringArray{}, values...)
}

// AutoMigrate creates or updates the pets table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&petRecord{})
}
