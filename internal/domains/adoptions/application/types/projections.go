package types

import (
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// AdoptionProjection transports an application together with its persistence metadata.
type AdoptionProjection struct {
	Adoption *domain.Adoption
	Metadata projection.Metadata
}

// NewAdoptionProjection wraps an aggregate with persistence metadata.
func NewAdoptionProjection(adoption *domain.Adoption, createdAt, updatedAt time.Time) *AdoptionProjection {
	if adoption == nil {
		return nil
	}
	return &AdoptionProjection{
		Adoption: adoption,
		Metadata: projection.NewMetadata(createdAt, updatedAt),
	}
}

// SubmitResult is the outcome of a submission. Replayed is true when an idempotency key
// matched an earlier identical request and nothing new was written.
type SubmitResult struct {
	Adoption *AdoptionProjection
	Pet      *pettypes.PetProjection
	Replayed bool
}

// DecisionResult is the state of the application and its pet after a decision or
// cancellation.
type DecisionResult struct {
	Adoption *AdoptionProjection
	Pet      *pettypes.PetProjection
}

// ReconcileChange reports a pet whose stored status was repaired.
type ReconcileChange struct {
	PetID     string
	From      petdomain.Status
	To        petdomain.Status
	AdoptedBy string
}
