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

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/observability/service"

// Service decorates the pets port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
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

func (s *Service) Create(ctx context.Context, input pettypes.CreatePetInput) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Create", attribute.String("actor.id", input.Actor.UserID))
	defer span.End()

	result, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create pet", slog.String("actor.id", input.Actor.UserID))
	}
	if result != nil && result.Pet != nil {
		span.SetAttributes(attribute.String("pet.id", result.Pet.ID))
		s.metrics.recordCreated(ctx, string(result.Pet.Profile.Species))
		s.logInfo(ctx, "pet created", slog.String("pet.id", result.Pet.ID), slog.String("species", string(result.Pet.Profile.Species)))
	}
	return result, nil
}

func (s *Service) Update(ctx context.Context, input pettypes.UpdatePetInput) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Update", attribute.String("pet.id", input.ID))
	defer span.End()

	result, err := s.inner.Update(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update pet", slog.String("pet.id", input.ID))
	}
	s.metrics.recordUpdated(ctx)
	s.logInfo(ctx, "pet updated", slog.String("pet.id", input.ID))
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, input pettypes.PetIdentifier) (*pettypes.PetProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetByID", attribute.String("pet.id", input.ID))
	defer span.End()

	result, err := s.inner.GetByID(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get pet", slog.String("pet.id", input.ID))
	}
	return result, nil
}

func (s *Service) List(ctx context.Context, input pettypes.ListPetsInput) (*pettypes.PetPage, error) {
	ctx, span := s.startSpan(ctx, "Service.List",
		attribute.Int("page", input.Page),
		attribute.String("filter.species", input.Species),
		attribute.String("filter.status", input.Status),
	)
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list pets")
	}
	span.SetAttributes(attribute.Int("pet.result.count", len(result.Items)), attribute.Int64("pet.result.total", result.Total))
	return result, nil
}

func (s *Service) Delete(ctx context.Context, input pettypes.DeletePetInput) error {
	ctx, span := s.startSpan(ctx, "Service.Delete", attribute.String("pet.id", input.ID))
	defer span.End()

	if err := s.inner.Delete(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to delete pet", slog.String("pet.id", input.ID))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "pet deleted", slog.String("pet.id", input.ID))
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	petsCreated metric.Int64Counter
	petsUpdated metric.Int64Counter
	petsDeleted metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	petsCreated, _ := m.Int64Counter("pets.service.created", metric.WithDescription("Number of listings posted"))
	petsUpdated, _ := m.Int64Counter("pets.service.updated", metric.WithDescription("Number of listings edited"))
	petsDeleted, _ := m.Int64Counter("pets.service.deleted", metric.WithDescription("Number of listings removed"))
	return serviceMetrics{petsCreated: petsCreated, petsUpdated: petsUpdated, petsDeleted: petsDeleted}
}

func (m serviceMetrics) recordCreated(ctx context.Context, species string) {
	addCounter(ctx, m.petsCreated, 1, attribute.String("pet.species", species))
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	addCounter(ctx, m.petsUpdated, 1)
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	addCounter(ctx, m.petsDeleted, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
