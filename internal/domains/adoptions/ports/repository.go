package ports

import (
	"context"
	"errors"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

var ErrNotFound = errors.New("adoption not found")

// Filter selects applications. Empty fields do not filter.
type Filter struct {
	PetID       string
	ApplicantID string
	Statuses    []domain.Status
	// ExcludeID leaves one application out, e.g. the one being decided.
	ExcludeID string
}

// Repository stores adoption applications.
type Repository interface {
	Create(ctx context.Context, adoption *domain.Adoption) (*adoptiontypes.AdoptionProjection, error)
	Update(ctx context.Context, adoption *domain.Adoption) (*adoptiontypes.AdoptionProjection, error)
	GetByID(ctx context.Context, id string) (*adoptiontypes.AdoptionProjection, error)
	// List returns matches ordered by application date, newest first.
	List(ctx context.Context, filter Filter) ([]*adoptiontypes.AdoptionProjection, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

// PetStore is the slice of the pets repository the adoption rules need.
type PetStore interface {
	GetByID(ctx context.Context, id string) (*pettypes.PetProjection, error)
	GetByIDForUpdate(ctx context.Context, id string) (*pettypes.PetProjection, error)
	Save(ctx context.Context, pet *petdomain.Pet) (*pettypes.PetProjection, error)
	List(ctx context.Context) ([]*pettypes.PetProjection, error)
}

// Stores are the repositories bound to one unit of work.
type Stores struct {
	Pets      PetStore
	Adoptions Repository
}

// UnitOfWork runs fn atomically: every write made through stores is committed when fn
// returns nil and discarded otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

// ApplicantDirectory resolves applicant profiles for default contact details.
type ApplicantDirectory interface {
	ContactInfo(ctx context.Context, userID string) (domain.ContactInfo, error)
}
