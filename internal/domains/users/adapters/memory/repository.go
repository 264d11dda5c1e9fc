package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps users in memory. Emails are unique.
type Repository struct {
	mu    sync.RWMutex
	users map[string]*storedUser
	now   func() time.Time
}

type storedUser struct {
	user      *domain.User
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Repository)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRepository(opts ...Option) *Repository {
	r := &Repository{users: map[string]*storedUser{}, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Create(_ context.Context, user *domain.User) (*usertypes.UserProjection, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(user.Email, "") {
		return nil, ports.ErrEmailTaken
	}
	now := r.now().UTC()
	stored := &storedUser{user: user.Clone(), createdAt: now, updatedAt: now}
	r.users[user.ID] = stored
	return stored.projection(), nil
}

func (r *Repository) Update(_ context.Context, user *domain.User) (*usertypes.UserProjection, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return nil, ports.ErrEmailTaken
	}
	stored.user = user.Clone()
	stored.updatedAt = r.now().UTC()
	return stored.projection(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*usertypes.UserProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return stored.projection(), nil
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*usertypes.UserProjection, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, stored := range r.users {
		if stored.user.Email == email {
			return stored.projection(), nil
		}
	}
	return nil, ports.ErrNotFound
}

// List returns users oldest first.
func (r *Repository) List(_ context.Context) ([]*usertypes.UserProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*usertypes.UserProjection, 0, len(r.users))
	for _, stored := range r.users {
		result = append(result, stored.projection())
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Metadata.CreatedAt, result[j].Metadata.CreatedAt
		if a.Equal(b) {
			return result[i].Entity.ID < result[j].Entity.ID
		}
		return a.Before(b)
	})
	return result, nil
}

func (r *Repository) emailTaken(email, exceptID string) bool {
	for id, stored := range r.users {
		if id != exceptID && stored.user.Email == email {
			return true
		}
	}
	return false
}

func (s *storedUser) projection() *usertypes.UserProjection {
	return usertypes.NewUserProjection(s.user.Clone(), s.createdAt, s.updatedAt)
}
