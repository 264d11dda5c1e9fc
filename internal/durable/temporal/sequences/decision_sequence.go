package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	adoptionactivities "github.com/Apurer/pet-adoption-api/internal/durable/temporal/activities/adoptions"
)

// RunDecisionSequence applies the decision, then notifies the applicant. A notification
// that still fails after its retries is logged and does not fail the decision.
func RunDecisionSequence(ctx workflow.Context, input adoptiontypes.DecideInput) (*adoptiontypes.DecisionResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("decision sequence started", "adoptionId", input.AdoptionID)

	decideCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	})
	var result adoptiontypes.DecisionResult
	if err := workflow.ExecuteActivity(decideCtx, adoptionactivities.DecideActivityName, input).Get(ctx, &result); err != nil {
		logger.Error("decision sequence failed", "adoptionId", input.AdoptionID, "error", err)
		return nil, err
	}

	if result.Adoption != nil && result.Adoption.Adoption != nil {
		notifyCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: 30 * time.Second,
			HeartbeatTimeout:    10 * time.Second,
			RetryPolicy: &temporal.RetryPolicy{
				InitialInterval:    time.Second,
				BackoffCoefficient: 2.0,
				MaximumInterval:    time.Minute,
				MaximumAttempts:    10,
			},
		})
		adoption := result.Adoption.Adoption
		notify := adoptionactivities.NotifyApplicantInput{
			AdoptionID:  adoption.ID,
			PetID:       adoption.PetID,
			ApplicantID: adoption.ApplicantID,
			Status:      adoption.Status,
		}
		if err := workflow.ExecuteActivity(notifyCtx, adoptionactivities.NotifyApplicantActivityName, notify).Get(ctx, nil); err != nil {
			logger.Warn("applicant notification gave up", "adoptionId", adoption.ID, "error", err)
		}
	}
	logger.Info("decision sequence completed", "adoptionId", input.AdoptionID)
	return &result, nil
}
