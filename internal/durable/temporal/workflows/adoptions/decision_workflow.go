package adoptions

import (
	"go.temporal.io/sdk/workflow"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/durable/temporal/sequences"
)

const (
	// DecisionWorkflowName is the public identifier for registering the workflow.
	DecisionWorkflowName = "adoptions.workflows.Decision"
	// DecisionTaskQueue is the queue consumed by the worker processing adoption workflows.
	DecisionTaskQueue = "ADOPTION_DECISIONS"
)

// DecisionWorkflowInput carries an admin decision into the workflow.
type DecisionWorkflowInput struct {
	Command adoptiontypes.DecideInput
	TraceID string
}

// AdoptionDecisionWorkflow applies an admin decision durably and notifies the applicant.
func AdoptionDecisionWorkflow(ctx workflow.Context, input DecisionWorkflowInput) (*adoptiontypes.DecisionResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("AdoptionDecisionWorkflow started", withTraceID(input.TraceID, "adoptionId", input.Command.AdoptionID, "status", input.Command.Status)...)
	result, err := sequences.RunDecisionSequence(ctx, input.Command)
	if err != nil {
		logger.Error("AdoptionDecisionWorkflow failed", withTraceID(input.TraceID, "adoptionId", input.Command.AdoptionID, "error", err)...)
		return nil, err
	}
	logger.Info("AdoptionDecisionWorkflow completed", withTraceID(input.TraceID, "adoptionId", input.Command.AdoptionID)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
