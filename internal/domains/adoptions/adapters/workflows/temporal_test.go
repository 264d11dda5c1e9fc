package workflows

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/temporal"

	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	adoptionworkflows "github.com/Apurer/pet-adoption-api/internal/durable/temporal/workflows/adoptions"
)

func approvedResult() adoptiontypes.DecisionResult {
	return adoptiontypes.DecisionResult{
		Adoption: &adoptiontypes.AdoptionProjection{Adoption: &domain.Adoption{ID: "a1", Status: domain.StatusApproved}},
	}
}

func fillResult(args mock.Arguments) {
	*args.Get(1).(*adoptiontypes.DecisionResult) = approvedResult()
}

func TestTemporalAdoptionWorkflows_StartsDecisionWorkflow(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	input := adoptiontypes.DecideInput{AdoptionID: "a1", Status: "Approved"}

	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(run, nil)
	run.On("Get", mock.Anything, mock.Anything).Run(fillResult).Return(nil)

	result, err := NewTemporalAdoptionWorkflows(c).Decide(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, result.Adoption.Adoption.Status)

	call := c.Calls[0]
	opts := call.Arguments.Get(1).(client.StartWorkflowOptions)
	require.Equal(t, adoptionworkflows.DecisionTaskQueue, opts.TaskQueue)
	require.True(t, strings.HasPrefix(opts.ID, "adoption-decision-a1-"))
	require.True(t, opts.WorkflowExecutionErrorWhenAlreadyStarted)
	wfInput := call.Arguments.Get(3).(adoptionworkflows.DecisionWorkflowInput)
	require.Equal(t, input, wfInput.Command)
	require.NotEmpty(t, wfInput.TraceID)
	c.AssertExpectations(t)
	run.AssertExpectations(t)
}

func TestTemporalAdoptionWorkflows_JoinsRunAlreadyInFlight(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}

	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "req-1", "run-7"))
	c.On("GetWorkflow", mock.Anything, mock.Anything, "run-7").Return(run)
	run.On("Get", mock.Anything, mock.Anything).Run(fillResult).Return(nil)

	result, err := NewTemporalAdoptionWorkflows(c).Decide(context.Background(), adoptiontypes.DecideInput{AdoptionID: "a1"})
	require.NoError(t, err)
	require.Equal(t, "a1", result.Adoption.Adoption.ID)
	c.AssertExpectations(t)
}

func TestTemporalAdoptionWorkflows_RestoresRuleErrors(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}

	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(run, nil)
	run.On("Get", mock.Anything, mock.Anything).
		Return(temporal.NewNonRetryableApplicationError("unauthorized: admin role required", "unauthorized", nil))

	_, err := NewTemporalAdoptionWorkflows(c).Decide(context.Background(), adoptiontypes.DecideInput{AdoptionID: "a1"})
	require.ErrorIs(t, err, adoptionapp.ErrUnauthorized)
}
