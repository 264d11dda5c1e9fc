package ports

import (
	"context"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
)

// Service defines the adoption use cases exposed to adapters (inbound/driving port).
type Service interface {
	Submit(ctx context.Context, input adoptiontypes.SubmitInput) (*adoptiontypes.SubmitResult, error)
	Decide(ctx context.Context, input adoptiontypes.DecideInput) (*adoptiontypes.DecisionResult, error)
	Cancel(ctx context.Context, input adoptiontypes.CancelInput) (*adoptiontypes.DecisionResult, error)
	SetManualStatus(ctx context.Context, input adoptiontypes.ManualStatusInput) (*pettypes.PetProjection, error)
	Reconcile(ctx context.Context, input adoptiontypes.ReconcileInput) ([]adoptiontypes.ReconcileChange, error)
	Get(ctx context.Context, input adoptiontypes.GetAdoptionInput) (*adoptiontypes.AdoptionProjection, error)
	List(ctx context.Context, input adoptiontypes.ListAdoptionsInput) ([]*adoptiontypes.AdoptionProjection, error)
}
