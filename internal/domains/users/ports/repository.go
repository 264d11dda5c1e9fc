package ports

import (
	"context"
	"errors"

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Repository persists users. Emails are unique.
type Repository interface {
	Create(ctx context.Context, user *domain.User) (*usertypes.UserProjection, error)
	Update(ctx context.Context, user *domain.User) (*usertypes.UserProjection, error)
	GetByID(ctx context.Context, id string) (*usertypes.UserProjection, error)
	GetByEmail(ctx context.Context, email string) (*usertypes.UserProjection, error)
	List(ctx context.Context) ([]*usertypes.UserProjection, error)
}
