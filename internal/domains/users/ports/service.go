package ports

import (
	"context"

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
)

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, input usertypes.RegisterInput) (*usertypes.UserProjection, error)
	Login(ctx context.Context, input usertypes.LoginInput) (*usertypes.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (actor.Actor, error)
	Me(ctx context.Context, who actor.Actor) (*usertypes.UserProjection, error)
	Get(ctx context.Context, input usertypes.GetUserInput) (*usertypes.UserProjection, error)
	Update(ctx context.Context, input usertypes.UpdateUserInput) (*usertypes.UserProjection, error)
	List(ctx context.Context, who actor.Actor) ([]*usertypes.UserProjection, error)
	BootstrapAdmin(ctx context.Context, input usertypes.BootstrapAdminInput) (*usertypes.UserProjection, error)
}
