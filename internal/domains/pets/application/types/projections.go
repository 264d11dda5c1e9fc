package types

import (
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// PetProjection transports a domain aggregate together with its persistence metadata.
type PetProjection struct {
	Pet      *domain.Pet
	Metadata projection.Metadata
}

// NewPetProjection wraps an aggregate with persistence metadata.
func NewPetProjection(pet *domain.Pet, createdAt, updatedAt time.Time) *PetProjection {
	if pet == nil {
		return nil
	}
	return &PetProjection{
		Pet:      pet,
		Metadata: projection.NewMetadata(createdAt, updatedAt),
	}
}

// PetPage is one page of the catalogue.
type PetPage struct {
	Items      []*PetProjection
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// NewPetPage computes the page count for total matches.
func NewPetPage(items []*PetProjection, total int64, page, limit int) *PetPage {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &PetPage{Items: items, Total: total, Page: page, Limit: limit, TotalPages: pages}
}
