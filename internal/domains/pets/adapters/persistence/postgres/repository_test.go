package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/sqlite"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.OpenMemory(t.Name())
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPetRecord_SchemaParses(t *testing.T) {
	parsed, err := schema.Parse(&petRecord{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	images := parsed.LookUpField("images")
	require.NotNil(t, images)
	require.EqualValues(t, "text", images.DataType)
}

func TestRepository_EmptyArraysRoundTripAsNil(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	pet := newTestPet(t, "p1", "Misty", "Boston")
	pet.Profile.Images = nil
	pet.Profile.SpecialNeeds = nil

	saved, err := repo.Save(context.Background(), pet)
	require.NoError(t, err)
	require.Nil(t, saved.Pet.Profile.Images)
	require.Nil(t, saved.Pet.Profile.SpecialNeeds)
}

func newTestPet(t *testing.T, id, name, city string) *domain.Pet {
	t.Helper()
	pet, err := domain.NewPet(id, "admin", domain.Profile{
		Name:         name,
		Species:      domain.SpeciesCat,
		Breed:        "Tabby",
		Age:          4,
		Gender:       domain.GenderFemale,
		Size:         domain.SizeSmall,
		Description:  "Sleeps_all day 100%",
		Images:       []string{"a.jpg", "b.jpg"},
		SpecialNeeds: []string{"diet"},
		Location:     domain.Location{City: city},
	})
	require.NoError(t, err)
	return pet
}

func TestRepository_SaveRoundTripsArrays(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	saved, err := repo.Save(ctx, newTestPet(t, "p1", "Misty", "Boston"))
	require.NoError(t, err)
	require.Equal(t, []string{"a.jpg", "b.jpg"}, saved.Pet.Profile.Images)
	require.Equal(t, []string{"diet"}, saved.Pet.Profile.SpecialNeeds)
	require.Equal(t, domain.StatusAvailable, saved.Pet.Status)
	require.False(t, saved.Metadata.CreatedAt.IsZero())
}

func TestRepository_SaveUpdatesStatusAndAdopter(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	pet := newTestPet(t, "p1", "Misty", "Boston")
	first, err := repo.Save(ctx, pet)
	require.NoError(t, err)

	require.NoError(t, pet.ApplyDerivedStatus(domain.StatusAdopted, "u1"))
	saved, err := repo.Save(ctx, pet)
	require.NoError(t, err)
	require.Equal(t, domain.StatusAdopted, saved.Pet.Status)
	require.Equal(t, "u1", saved.Pet.AdoptedBy)
	require.True(t, saved.Metadata.CreatedAt.Equal(first.Metadata.CreatedAt))
}

func TestRepository_UpdateProfileLeavesStatusAlone(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	pet := newTestPet(t, "p1", "Misty", "Boston")
	pet.HoldManually()
	_, err := repo.Save(ctx, pet)
	require.NoError(t, err)

	profile := pet.Profile
	profile.Name = "Misty II"
	updated, err := repo.UpdateProfile(ctx, "p1", profile)
	require.NoError(t, err)
	require.Equal(t, "Misty II", updated.Pet.Profile.Name)
	require.Equal(t, domain.StatusNotAvailable, updated.Pet.Status)

	_, err = repo.UpdateProfile(ctx, "missing", profile)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_FindFiltersWithEscapedPatterns(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	for _, p := range []*domain.Pet{
		newTestPet(t, "p1", "Misty", "Boston"),
		newTestPet(t, "p2", "Shadow", "New Boston"),
		newTestPet(t, "p3", "Pepper", "Denver"),
	} {
		_, err := repo.Save(ctx, p)
		require.NoError(t, err)
	}

	items, total, err := repo.Find(ctx, ports.Filter{City: "BOSTON"})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, items, 2)

	_, total, err = repo.Find(ctx, ports.Filter{Search: "sleeps_all"})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)

	_, total, err = repo.Find(ctx, ports.Filter{Search: "sleeps%day"})
	require.NoError(t, err)
	require.EqualValues(t, 0, total)

	items, total, err = repo.Find(ctx, ports.Filter{Species: domain.SpeciesCat, Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, items, 1)
}

func TestRepository_GetByIDForUpdateAndDelete(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	_, err := repo.Save(ctx, newTestPet(t, "p1", "Misty", "Boston"))
	require.NoError(t, err)

	locked, err := repo.GetByIDForUpdate(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Misty", locked.Pet.Profile.Name)

	require.NoError(t, repo.Delete(ctx, "p1"))
	require.ErrorIs(t, repo.Delete(ctx, "p1"), ports.ErrNotFound)
	_, err = repo.GetByID(ctx, "p1")
	require.ErrorIs(t, err, ports.ErrNotFound)
}
