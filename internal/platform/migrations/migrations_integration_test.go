//go:build integration

package migrations

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	adoptionspostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	petspostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/platform/postgres"
	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("adoptions_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, Run(db))
	// Idempotent: the API and worker both run migrations at start-up.
	require.NoError(t, Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func seedPet(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	pet, err := petdomain.NewPet(id, "admin", petdomain.Profile{
		Name:         "Biscuit",
		Species:      petdomain.SpeciesDog,
		Gender:       petdomain.GenderMale,
		Size:         petdomain.SizeMedium,
		Description:  "Friendly",
		Images:       []string{"one.jpg", "two.jpg"},
		SpecialNeeds: []string{"daily walk"},
	})
	require.NoError(t, err)
	_, err = petspostgres.NewRepository(db).Save(context.Background(), pet)
	require.NoError(t, err)
}

func TestPostgres_PetArraysUseNativeType(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()
	seedPet(t, db, "pet-1")

	got, err := petspostgres.NewRepository(db).GetByID(context.Background(), "pet-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"one.jpg", "two.jpg"}, got.Pet.Profile.Images)

	var dataType string
	require.NoError(t, db.Raw(
		"SELECT data_type FROM information_schema.columns WHERE table_name = 'pets' AND column_name = 'images'",
	).Scan(&dataType).Error)
	assert.Equal(t, "ARRAY", dataType)
}

func TestPostgres_ConcurrentSubmissionsYieldOneApplication(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPostgresContainer(t)
	defer cleanup()
	seedPet(t, db, "pet-1")
	svc := adoptionapp.NewService(adoptionspostgres.NewUnitOfWork(db))

	const applicants = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < applicants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), adoptiontypes.SubmitInput{
				Actor:         actor.Actor{UserID: fmt.Sprintf("user-%d", i), Role: actor.RoleUser},
				PetID:         "pet-1",
				ApplicantInfo: adoptiontypes.ApplicantInfoInput{AgreeToTerms: true},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case adoptionapp.ErrorKind(err) == "invalid_state":
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, applicants-1, rejected)

	pet, err := petspostgres.NewRepository(db).GetByID(context.Background(), "pet-1")
	require.NoError(t, err)
	assert.Equal(t, petdomain.StatusPending, pet.Pet.Status)

	changes, err := svc.Reconcile(context.Background(), adoptiontypes.ReconcileInput{Actor: actor.Actor{UserID: "admin", Role: actor.RoleAdmin}})
	require.NoError(t, err)
	assert.Empty(t, changes)
}
