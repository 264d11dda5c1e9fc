package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
)

const tracerName = "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
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

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
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

func (s *Service) Register(ctx context.Context, input usertypes.RegisterInput) (*usertypes.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register")
	defer span.End()
	result, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user")
	}
	s.metrics.recordRegistered(ctx)
	span.SetAttributes(attribute.String("user.id", result.Entity.ID))
	s.logInfo(ctx, "user registered", slog.String("user_id", result.Entity.ID))
	return result, nil
}

func (s *Service) Login(ctx context.Context, input usertypes.LoginInput) (*usertypes.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login")
	defer span.End()
	result, err := s.inner.Login(ctx, input)
	if err != nil {
		s.metrics.recordLoginFailure(ctx)
		return nil, s.handleError(ctx, span, err, "login failed")
	}
	s.metrics.recordLogin(ctx)
	s.logInfo(ctx, "user logged in", slog.String("user_id", result.User.Entity.ID))
	return result, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	return nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (actor.Actor, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	who, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return actor.Actor{}, err
	}
	span.SetAttributes(attribute.String("actor.id", who.UserID), attribute.String("actor.role", string(who.Role)))
	return who, nil
}

func (s *Service) Me(ctx context.Context, who actor.Actor) (*usertypes.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Me", trace.WithAttributes(attribute.String("actor.id", who.UserID)))
	defer span.End()
	return s.inner.Me(ctx, who)
}

func (s *Service) Get(ctx context.Context, input usertypes.GetUserInput) (*usertypes.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Get", trace.WithAttributes(attribute.String("user.id", input.ID)))
	defer span.End()
	return s.inner.Get(ctx, input)
}

func (s *Service) Update(ctx context.Context, input usertypes.UpdateUserInput) (*usertypes.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Update", trace.WithAttributes(attribute.String("user.id", input.ID)))
	defer span.End()
	result, err := s.inner.Update(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update user", slog.String("user_id", input.ID))
	}
	s.metrics.recordUpdated(ctx)
	return result, nil
}

func (s *Service) List(ctx context.Context, who actor.Actor) ([]*usertypes.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.List")
	defer span.End()
	result, err := s.inner.List(ctx, who)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users")
	}
	span.SetAttributes(attribute.Int("user.count", len(result)))
	return result, nil
}

func (s *Service) BootstrapAdmin(ctx context.Context, input usertypes.BootstrapAdminInput) (*usertypes.UserProjection, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.BootstrapAdmin")
	defer span.End()
	result, err := s.inner.BootstrapAdmin(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to bootstrap admin")
	}
	return result, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	level := slog.LevelError
	if expected(err) {
		level = slog.LevelWarn
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

func expected(err error) bool {
	return errors.Is(err, userapp.ErrInvalidInput) ||
		errors.Is(err, userapp.ErrAuthentication) ||
		errors.Is(err, userapp.ErrForbidden) ||
		errors.Is(err, userapp.ErrConflict) ||
		errors.Is(err, userports.ErrNotFound)
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

type serviceMetrics struct {
	registered    metric.Int64Counter
	updated       metric.Int64Counter
	logins        metric.Int64Counter
	loginFailures metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of users registered"))
	updated, _ := m.Int64Counter("users.service.updated", metric.WithDescription("Number of users updated"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of successful logins"))
	failures, _ := m.Int64Counter("users.service.login_failures", metric.WithDescription("Number of rejected logins"))
	return serviceMetrics{registered: registered, updated: updated, logins: logins, loginFailures: failures}
}

func (m serviceMetrics) recordRegistered(ctx context.Context) {
	if m.registered != nil {
		m.registered.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	if m.updated != nil {
		m.updated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLoginFailure(ctx context.Context) {
	if m.loginFailures != nil {
		m.loginFailures.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
