package mapper

import (
	"time"

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
)

// Address is the transport shape of a postal address.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Phone    string  `json:"phone"`
	Address  Address `json:"address"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateRequest is a partial profile update.
type UpdateRequest struct {
	Name    *string  `json:"name"`
	Email   *string  `json:"email"`
	Phone   *string  `json:"phone"`
	Address *Address `json:"address"`
}

// User represents the transport-level user payload. The password hash never leaves the service.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   Address   `json:"address"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	User      User       `json:"user"`
}

func ToRegisterInput(req RegisterRequest) usertypes.RegisterInput {
	return usertypes.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  toAddressInput(req.Address),
	}
}

func ToLoginInput(req LoginRequest) usertypes.LoginInput {
	return usertypes.LoginInput{Email: req.Email, Password: req.Password}
}

// ToUpdateInput copies only the fields present in the request.
func ToUpdateInput(req UpdateRequest) usertypes.UpdateUserInput {
	input := usertypes.UpdateUserInput{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if req.Address != nil {
		addr := toAddressInput(*req.Address)
		input.Address = &addr
	}
	return input
}

// FromProjection converts a stored user into its transport representation.
func FromProjection(proj *usertypes.UserProjection) User {
	if proj == nil || proj.Entity == nil {
		return User{}
	}
	u := proj.Entity
	return User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Address: Address{
			Street:  u.Address.Street,
			City:    u.Address.City,
			State:   u.Address.State,
			ZipCode: u.Address.ZipCode,
		},
		Role:      string(u.Role),
		CreatedAt: proj.Metadata.CreatedAt,
		UpdatedAt: proj.Metadata.UpdatedAt,
	}
}

func FromProjections(projs []*usertypes.UserProjection) []User {
	result := make([]User, 0, len(projs))
	for _, proj := range projs {
		result = append(result, FromProjection(proj))
	}
	return result
}

// FromLogin builds the login response.
func FromLogin(result *usertypes.LoginResult) AuthResponse {
	if result == nil {
		return AuthResponse{}
	}
	expires := result.ExpiresAt
	return AuthResponse{Token: result.Token, ExpiresAt: &expires, User: FromProjection(result.User)}
}

func toAddressInput(a Address) usertypes.AddressInput {
	return usertypes.AddressInput{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode}
}
