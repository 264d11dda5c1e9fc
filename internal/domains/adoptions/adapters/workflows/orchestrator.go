package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	adoptionworkflows "github.com/Apurer/pet-adoption-api/internal/durable/temporal/workflows/adoptions"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalAdoptionWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineAdoptionWorkflows)(nil)
)

// TemporalAdoptionWorkflows runs adoption decisions on a Temporal cluster.
type TemporalAdoptionWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalAdoptionWorkflows wires a Temporal client into the orchestrator.
func NewTemporalAdoptionWorkflows(c client.Client) *TemporalAdoptionWorkflows {
	return &TemporalAdoptionWorkflows{client: c, taskQueue: adoptionworkflows.DecisionTaskQueue}
}

// Decide starts the decision workflow and waits for its result. A request retried under
// the same trace joins the run already in flight instead of deciding twice.
func (o *TemporalAdoptionWorkflows) Decide(ctx context.Context, input adoptiontypes.DecideInput) (*adoptiontypes.DecisionResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal adoption workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := fmt.Sprintf("adoption-decision-%s-%s", input.AdoptionID, traceComponent)
	options := client.StartWorkflowOptions{
		ID:                                       workflowID,
		TaskQueue:                                o.taskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		adoptionworkflows.AdoptionDecisionWorkflow,
		adoptionworkflows.DecisionWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result adoptiontypes.DecisionResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, fromWorkflowError(err)
	}
	return &result, nil
}

// fromWorkflowError restores the application error category carried as the
// application error type by the decide activity.
func fromWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) || appErr.Type() == "" {
		return err
	}
	message := appErr.Error()
	if idx := strings.Index(message, " (type: "); idx >= 0 {
		message = message[:idx]
	}
	return adoptionapp.ErrorFromKind(appErr.Type(), message)
}

// InlineAdoptionWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineAdoptionWorkflows struct {
	service   ports.Service
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// InlineOption customises the inline orchestrator.
type InlineOption func(*InlineAdoptionWorkflows)

// WithNotificationPublisher sets where applicant notifications are published.
func WithNotificationPublisher(p events.Publisher) InlineOption {
	return func(o *InlineAdoptionWorkflows) {
		if p != nil {
			o.publisher = p
		}
	}
}

// WithLogger sets the logger used for notification failures.
func WithLogger(l *slog.Logger) InlineOption {
	return func(o *InlineAdoptionWorkflows) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewInlineAdoptionWorkflows wraps the adoptions service for synchronous execution.
func NewInlineAdoptionWorkflows(service ports.Service, opts ...InlineOption) *InlineAdoptionWorkflows {
	o := &InlineAdoptionWorkflows{
		service:   service,
		publisher: events.Discard,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Decide delegates to the application service and then notifies the applicant.
// A failed notification is logged and does not fail the decision.
func (o *InlineAdoptionWorkflows) Decide(ctx context.Context, input adoptiontypes.DecideInput) (*adoptiontypes.DecisionResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline adoption workflows not configured")
	}
	result, err := o.service.Decide(ctx, input)
	if err != nil {
		return nil, err
	}
	if result.Adoption != nil && result.Adoption.Adoption != nil {
		event := domain.NewApplicantNotified(result.Adoption.Adoption, o.now())
		if err := o.publisher.Publish(ctx, event); err != nil {
			o.logger.WarnContext(ctx, "applicant notification failed",
				slog.String("adoption_id", input.AdoptionID),
				slog.String("error", err.Error()),
			)
		}
	}
	return result, nil
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
