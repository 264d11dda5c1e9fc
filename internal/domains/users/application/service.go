package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
)

// DefaultSessionTTL bounds how long a login stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Service exposes user bounded context use cases.
type Service struct {
	repo       ports.Repository
	sessions   ports.SessionStore
	tokens     ports.TokenIssuer
	logger     *slog.Logger
	sessionTTL time.Duration
	now        func() time.Time
	newID      func() string
}

// Option customises the service.
type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, tokens ports.TokenIssuer, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		tokens:     tokens,
		logger:     slog.Default(),
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account with the user role.
func (s *Service) Register(ctx context.Context, input usertypes.RegisterInput) (*usertypes.UserProjection, error) {
	user, err := domain.NewUser(s.newID(), domain.Profile{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address.ToDomain(),
	}, input.Password)
	if err != nil {
		return nil, mapError(err)
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

// Login checks credentials, opens a session and issues a token bound to it.
func (s *Service) Login(ctx context.Context, input usertypes.LoginInput) (*usertypes.LoginResult, error) {
	email, err := domain.NormalizeEmail(input.Email)
	if err != nil || input.Password == "" {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, errInvalidCredentials)
	}
	found, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, errInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !found.Entity.CheckPassword(input.Password) {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, errInvalidCredentials)
	}
	session := domain.Session{
		ID:        s.newID(),
		UserID:    found.Entity.ID,
		ExpiresAt: s.now().Add(s.sessionTTL).UTC(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(ports.Claims{
		UserID:    found.Entity.ID,
		Role:      found.Entity.Role,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, err
	}
	return &usertypes.LoginResult{Token: token, ExpiresAt: session.ExpiresAt, User: found}, nil
}

// Logout ends the session behind token.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return mapError(err)
	}
	return s.sessions.Delete(ctx, claims.SessionID)
}

// Authenticate resolves a bearer token to the caller. The role comes from the stored user,
// so promotions apply without a new login.
func (s *Service) Authenticate(ctx context.Context, token string) (actor.Actor, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return actor.Actor{}, mapError(err)
	}
	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return actor.Actor{}, mapError(err)
	}
	if session.UserID != claims.UserID {
		return actor.Actor{}, fmt.Errorf("%w: %w", ErrAuthentication, ports.ErrInvalidToken)
	}
	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to drop expired session", slog.String("error", err.Error()))
		}
		return actor.Actor{}, fmt.Errorf("%w: %w", ErrAuthentication, errSessionExpired)
	}
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if errors.Is(err, ports.ErrNotFound) {
		return actor.Actor{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if err != nil {
		return actor.Actor{}, err
	}
	return user.Entity.Actor(), nil
}

// Me returns the caller's own account.
func (s *Service) Me(ctx context.Context, who actor.Actor) (*usertypes.UserProjection, error) {
	if who.Anonymous() {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, errNotAuthenticated)
	}
	return s.repo.GetByID(ctx, who.UserID)
}

// Get returns an account to its owner or an admin.
func (s *Service) Get(ctx context.Context, input usertypes.GetUserInput) (*usertypes.UserProjection, error) {
	if err := authorizeAccount(input.Actor, input.ID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, strings.TrimSpace(input.ID))
}

// Update applies a partial profile change for the owner or an admin.
func (s *Service) Update(ctx context.Context, input usertypes.UpdateUserInput) (*usertypes.UserProjection, error) {
	if err := authorizeAccount(input.Actor, input.ID); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, strings.TrimSpace(input.ID))
	if err != nil {
		return nil, err
	}
	user := existing.Entity.Clone()
	profile := user.Profile()
	if input.Name != nil {
		profile.Name = *input.Name
	}
	if input.Email != nil {
		profile.Email = *input.Email
	}
	if input.Phone != nil {
		profile.Phone = *input.Phone
	}
	if input.Address != nil {
		profile.Address = input.Address.ToDomain()
	}
	if err := user.UpdateProfile(profile); err != nil {
		return nil, mapError(err)
	}
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// List returns every account; admins only.
func (s *Service) List(ctx context.Context, who actor.Actor) ([]*usertypes.UserProjection, error) {
	if who.Anonymous() {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, errNotAuthenticated)
	}
	if !who.IsAdmin() {
		return nil, fmt.Errorf("%w: %w", ErrForbidden, errAdminOnly)
	}
	return s.repo.List(ctx)
}

// BootstrapAdmin makes sure an admin account exists for the given email, creating or
// promoting it. The password of an existing account is left alone.
func (s *Service) BootstrapAdmin(ctx context.Context, input usertypes.BootstrapAdminInput) (*usertypes.UserProjection, error) {
	email, err := domain.NormalizeEmail(input.Email)
	if err != nil {
		return nil, mapError(err)
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Entity.IsAdmin() {
			return existing, nil
		}
		user := existing.Entity.Clone()
		user.Promote()
		s.logger.InfoContext(ctx, "promoted existing user to admin", slog.String("user_id", user.ID))
		return s.repo.Update(ctx, user)
	case !errors.Is(err, ports.ErrNotFound):
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "Administrator"
	}
	user, err := domain.NewUser(s.newID(), domain.Profile{Name: name, Email: email}, input.Password)
	if err != nil {
		return nil, mapError(err)
	}
	user.Promote()
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	s.logger.InfoContext(ctx, "bootstrap admin created", slog.String("user_id", user.ID))
	return created, nil
}

func authorizeAccount(who actor.Actor, id string) error {
	if who.Anonymous() {
		return fmt.Errorf("%w: %w", ErrAuthentication, errNotAuthenticated)
	}
	if !who.IsAdmin() && who.UserID != strings.TrimSpace(id) {
		return fmt.Errorf("%w: %w", ErrForbidden, errNotSelf)
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
