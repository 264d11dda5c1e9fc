package types

import (
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// UserProjection is a user plus persistence metadata.
type UserProjection = projection.Projection[*domain.User]

// NewUserProjection wraps a user with persistence metadata.
func NewUserProjection(user *domain.User, createdAt, updatedAt time.Time) *UserProjection {
	if user == nil {
		return nil
	}
	return &UserProjection{
		Entity:   user,
		Metadata: projection.NewMetadata(createdAt, updatedAt),
	}
}

type AddressInput struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

func (a AddressInput) ToDomain() domain.Address {
	return domain.Address{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  AddressInput
}

type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the bearer token handed to the client.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *UserProjection
}

type GetUserInput struct {
	Actor actor.Actor
	ID    string
}

// UpdateUserInput is a partial profile update. Passwords are not changed here.
type UpdateUserInput struct {
	Actor   actor.Actor
	ID      string
	Name    *string
	Email   *string
	Phone   *string
	Address *AddressInput
}

type BootstrapAdminInput struct {
	Name     string
	Email    string
	Password string
}
