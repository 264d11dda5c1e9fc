package ports

import (
	"context"
	"errors"

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

var ErrNotFound = errors.New("pet not found")

// Filter is the storage-level form of a catalogue query.
type Filter struct {
	Species  domain.Species
	Gender   domain.Gender
	Size     domain.Size
	Status   domain.Status
	City     string
	PostedBy string
	MinAge   *int
	MaxAge   *int
	Search   string
	Offset   int
	Limit    int
}

type Repository interface {
	Save(ctx context.Context, pet *domain.Pet) (*pettypes.PetProjection, error)
	GetByID(ctx context.Context, id string) (*pettypes.PetProjection, error)
	// GetByIDForUpdate reads the pet and, inside a transaction, locks its row until commit.
	GetByIDForUpdate(ctx context.Context, id string) (*pettypes.PetProjection, error)
	// UpdateProfile writes only the descriptive columns, never status or adopter.
	UpdateProfile(ctx context.Context, id string, profile domain.Profile) (*pettypes.PetProjection, error)
	Delete(ctx context.Context, id string) error
	// Find returns one page of matches, newest first, and the total number of matches.
	Find(ctx context.Context, filter Filter) ([]*pettypes.PetProjection, int64, error)
	List(ctx context.Context) ([]*pettypes.PetProjection, error)
}
