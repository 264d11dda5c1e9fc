package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

// ErrSessionNotFound is returned for unknown sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore abstracts session persistence.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context) (int64, error)
}
