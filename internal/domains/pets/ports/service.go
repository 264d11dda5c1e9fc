package ports

import (
	"context"

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
)

// Service defines the pets use cases exposed to adapters (inbound/driving port).
type Service interface {
	Create(ctx context.Context, input pettypes.CreatePetInput) (*pettypes.PetProjection, error)
	Update(ctx context.Context, input pettypes.UpdatePetInput) (*pettypes.PetProjection, error)
	GetByID(ctx context.Context, input pettypes.PetIdentifier) (*pettypes.PetProjection, error)
	List(ctx context.Context, input pettypes.ListPetsInput) (*pettypes.PetPage, error)
	Delete(ctx context.Context, input pettypes.DeletePetInput) error
}
