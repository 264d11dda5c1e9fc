package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
)

var (
	admin = actor.Actor{UserID: "admin-1", Role: actor.RoleAdmin}
	user  = actor.Actor{UserID: "user-1", Role: actor.RoleUser}
)

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) error {
	p.events = append(p.events, evts...)
	return nil
}

func ptr[T any](v T) *T { return &v }

func mutation(name string) pettypes.PetMutationInput {
	return pettypes.PetMutationInput{
		Name:        ptr(name),
		Species:     ptr("Dog"),
		Age:         ptr(2),
		Gender:      ptr("Female"),
		Size:        ptr("Small"),
		Description: ptr("Loves walks"),
		Location:    &pettypes.LocationInput{City: "Springfield"},
	}
}

func newTestService(t *testing.T, opts ...Option) (*Service, *petmemory.Repository) {
	t.Helper()
	repo := petmemory.NewRepository()
	seq := 0
	opts = append([]Option{WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("pet-%d", seq)
	})}, opts...)
	return NewService(repo, opts...), repo
}

func TestCreate_PostsAvailableListing(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, _ := newTestService(t, WithPublisher(publisher))

	proj, err := svc.Create(context.Background(), pettypes.CreatePetInput{Actor: admin, PetMutationInput: mutation("Bella")})
	require.NoError(t, err)
	require.Equal(t, "pet-1", proj.Pet.ID)
	require.Equal(t, domain.StatusAvailable, proj.Pet.Status)
	require.Equal(t, admin.UserID, proj.Pet.PostedBy)
	require.False(t, proj.Metadata.CreatedAt.IsZero())

	require.Len(t, publisher.events, 1)
	require.Equal(t, "pets.pet.created", publisher.events[0].EventName())
}

func TestCreate_RequiresAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), pettypes.CreatePetInput{Actor: user, PetMutationInput: mutation("Bella")})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreate_InvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), pettypes.CreatePetInput{Actor: admin})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptyName)
}

func TestUpdate_AppliesPartialChangesAndKeepsStatus(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, pettypes.CreatePetInput{Actor: admin, PetMutationInput: mutation("Bella")})
	require.NoError(t, err)

	held := created.Pet.Clone()
	held.HoldManually()
	_, err = repo.Save(ctx, held)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, pettypes.UpdatePetInput{
		Actor:            admin,
		ID:               created.Pet.ID,
		PetMutationInput: pettypes.PetMutationInput{Breed: ptr("Beagle")},
	})
	require.NoError(t, err)
	require.Equal(t, "Bella", updated.Pet.Profile.Name)
	require.Equal(t, "Beagle", updated.Pet.Profile.Breed)
	require.Equal(t, domain.StatusNotAvailable, updated.Pet.Status)
}

func TestUpdate_UnknownPet(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), pettypes.UpdatePetInput{Actor: admin, ID: "missing"})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestList_FiltersAndPages(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, pettypes.CreatePetInput{Actor: admin, PetMutationInput: mutation(fmt.Sprintf("Dog %d", i))})
		require.NoError(t, err)
	}
	cat := mutation("Tom")
	cat.Species = ptr("Cat")
	_, err := svc.Create(ctx, pettypes.CreatePetInput{Actor: admin, PetMutationInput: cat})
	require.NoError(t, err)

	page, err := svc.List(ctx, pettypes.ListPetsInput{Species: "Dog", Page: 2, Limit: 2})
	require.NoError(t, err)
	require.EqualValues(t, 5, page.Total)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	require.Equal(t, "Dog 2", page.Items[0].Pet.Profile.Name)

	page, err = svc.List(ctx, pettypes.ListPetsInput{Search: "TOM", City: "spring"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, pettypes.DefaultLimit, page.Limit)

	_, err = svc.List(ctx, pettypes.ListPetsInput{Status: "Sold"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDelete_RemovesListing(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, _ := newTestService(t, WithPublisher(publisher))
	ctx := context.Background()
	created, err := svc.Create(ctx, pettypes.CreatePetInput{Actor: admin, PetMutationInput: mutation("Bella")})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, pettypes.DeletePetInput{Actor: user, ID: created.Pet.ID}), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, pettypes.DeletePetInput{Actor: admin, ID: created.Pet.ID}))

	_, err = svc.GetByID(ctx, pettypes.PetIdentifier{ID: created.Pet.ID})
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.Equal(t, "pets.pet.deleted", publisher.events[len(publisher.events)-1].EventName())
}
