package ports

import (
	"errors"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
)

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the facts carried inside an access token.
type Claims struct {
	UserID    string
	Role      actor.Role
	SessionID string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Issue(claims Claims) (string, error)
	Parse(token string) (Claims, error)
}
