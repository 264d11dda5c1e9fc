package ports

import (
	"context"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
)

// WorkflowOrchestrator exposes durable workflow operations required by the adoptions bounded context.
type WorkflowOrchestrator interface {
	Decide(ctx context.Context, input adoptiontypes.DecideInput) (*adoptiontypes.DecisionResult, error)
}
