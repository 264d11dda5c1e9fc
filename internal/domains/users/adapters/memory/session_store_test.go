package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

func TestSessionStore_PurgeExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Session{ID: "live", UserID: "u1", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.Save(ctx, domain.Session{ID: "edge", UserID: "u1", ExpiresAt: now}))
	require.NoError(t, store.Save(ctx, domain.Session{ID: "old", UserID: "u2", ExpiresAt: now.Add(-time.Hour)}))

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, purged)

	_, err = store.Get(ctx, "live")
	require.NoError(t, err)
	_, err = store.Get(ctx, "edge")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestRepository_EmailUniqueness(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	ada, err := domain.NewUser("u1", domain.Profile{Name: "Ada", Email: "ada@example.com"}, "secret1")
	require.NoError(t, err)
	_, err = repo.Create(ctx, ada)
	require.NoError(t, err)

	dup, err := domain.NewUser("u2", domain.Profile{Name: "Ada 2", Email: "ada@example.com"}, "secret1")
	require.NoError(t, err)
	_, err = repo.Create(ctx, dup)
	require.ErrorIs(t, err, ports.ErrEmailTaken)

	// Saving a user under its own email is not a conflict.
	ada.Phone = "555"
	updated, err := repo.Update(ctx, ada)
	require.NoError(t, err)
	require.Equal(t, "555", updated.Entity.Phone)

	// Stored users are copies.
	ada.Name = "Changed"
	got, err := repo.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.Equal(t, "Ada", got.Entity.Name)
}
