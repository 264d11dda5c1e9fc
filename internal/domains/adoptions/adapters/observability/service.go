package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/observability/service"

var _ ports.Service = (*Service)(nil)

// Service decorates the adoptions port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Submit(ctx context.Context, input adoptiontypes.SubmitInput) (*adoptiontypes.SubmitResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Submit",
		attribute.String("pet.id", input.PetID),
		attribute.String("actor.id", input.Actor.UserID),
		attribute.Bool("idempotency.key_present", input.IdempotencyKey != ""),
	)
	defer span.End()

	result, err := s.inner.Submit(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "submit", err)
		return nil, s.handleError(ctx, span, err, "adoption submission rejected", slog.String("pet.id", input.PetID))
	}
	span.SetAttributes(attribute.String("adoption.id", result.Adoption.Adoption.ID), attribute.Bool("idempotency.replayed", result.Replayed))
	if !result.Replayed {
		s.metrics.recordSubmitted(ctx)
	}
	s.logInfo(ctx, "adoption submitted",
		slog.String("adoption.id", result.Adoption.Adoption.ID),
		slog.String("pet.id", input.PetID),
		slog.Bool("replayed", result.Replayed),
	)
	return result, nil
}

func (s *Service) Decide(ctx context.Context, input adoptiontypes.DecideInput) (*adoptiontypes.DecisionResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Decide",
		attribute.String("adoption.id", input.AdoptionID),
		attribute.String("adoption.decision", input.Status),
	)
	defer span.End()

	result, err := s.inner.Decide(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "decide", err)
		return nil, s.handleError(ctx, span, err, "adoption decision rejected", slog.String("adoption.id", input.AdoptionID))
	}
	s.metrics.recordDecided(ctx, input.Status)
	attrs := []slog.Attr{slog.String("adoption.id", input.AdoptionID), slog.String("decision", input.Status)}
	if result.Pet != nil {
		attrs = append(attrs, slog.String("pet.status", string(result.Pet.Pet.Status)))
	}
	s.logInfo(ctx, "adoption decided", attrs...)
	return result, nil
}

func (s *Service) Cancel(ctx context.Context, input adoptiontypes.CancelInput) (*adoptiontypes.DecisionResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Cancel", attribute.String("adoption.id", input.AdoptionID))
	defer span.End()

	result, err := s.inner.Cancel(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, "cancel", err)
		return nil, s.handleError(ctx, span, err, "adoption cancellation rejected", slog.String("adoption.id", input.AdoptionID))
	}
	s.metrics.recordDecided(ctx, "Cancelled")
	s.logInfo(ctx, "adoption cancelled", slog.String("adoption.id", input.AdoptionID))
	return result, nil
}

func (s *Service) SetManualStatus(ctx context.Context, input adoptiontypes.ManualStatusInput) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.SetManualStatus",
		attribute.String("pet.id", input.PetID),
		attribute.String("pet.status", input.Status),
	)
	defer span.End()

	result, err := s.inner.SetManualStatus(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "manual status change rejected", slog.String("pet.id", input.PetID))
	}
	s.logInfo(ctx, "pet status set manually", slog.String("pet.id", input.PetID), slog.String("status", string(result.Pet.Status)))
	return result, nil
}

func (s *Service) Reconcile(ctx context.Context, input adoptiontypes.ReconcileInput) ([]adoptiontypes.ReconcileChange, error) {
	ctx, span := s.startSpan(ctx, "Service.Reconcile", attribute.String("pet.id", input.PetID))
	defer span.End()

	changes, err := s.inner.Reconcile(ctx, input)
	if err != nil {
		return changes, s.handleError(ctx, span, err, "reconciliation failed", slog.String("pet.id", input.PetID))
	}
	span.SetAttributes(attribute.Int("reconcile.changes", len(changes)))
	s.logInfo(ctx, "reconciliation finished", slog.Int("changes", len(changes)))
	return changes, nil
}

func (s *Service) Get(ctx context.Context, input adoptiontypes.GetAdoptionInput) (*adoptiontypes.AdoptionProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Get", attribute.String("adoption.id", input.AdoptionID))
	defer span.End()

	result, err := s.inner.Get(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get adoption", slog.String("adoption.id", input.AdoptionID))
	}
	return result, nil
}

func (s *Service) List(ctx context.Context, input adoptiontypes.ListAdoptionsInput) ([]*adoptiontypes.AdoptionProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.List", attribute.Bool("actor.admin", input.Actor.IsAdmin()))
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list adoptions")
	}
	span.SetAttributes(attribute.Int("adoption.result.count", len(result)))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// handleError logs expected rule violations at warn level and everything else at error.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	level := slog.LevelError
	if adoptionapp.ErrorKind(err) != "" {
		level = slog.LevelWarn
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	submitted metric.Int64Counter
	decided   metric.Int64Counter
	rejected  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	submitted, _ := m.Int64Counter("adoptions.service.submitted", metric.WithDescription("Number of applications opened"))
	decided, _ := m.Int64Counter("adoptions.service.decided", metric.WithDescription("Number of decisions and cancellations"))
	rejected, _ := m.Int64Counter("adoptions.service.rejected_requests", metric.WithDescription("Requests refused by the adoption rules"))
	return serviceMetrics{submitted: submitted, decided: decided, rejected: rejected}
}

func (m serviceMetrics) recordSubmitted(ctx context.Context) {
	addCounter(ctx, m.submitted, 1)
}

func (m serviceMetrics) recordDecided(ctx context.Context, status string) {
	addCounter(ctx, m.decided, 1, attribute.String("adoption.status", status))
}

func (m serviceMetrics) recordRejected(ctx context.Context, operation string, err error) {
	kind := adoptionapp.ErrorKind(err)
	if kind == "" {
		kind = "internal"
	}
	addCounter(ctx, m.rejected, 1, attribute.String("operation", operation), attribute.String("reason", kind))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}
