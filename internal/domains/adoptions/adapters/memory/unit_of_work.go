package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork serialises all adoption transactions behind one mutex. Writes are staged in
// an overlay and only applied to the repositories when the callback succeeds.
type UnitOfWork struct {
	mu        sync.Mutex
	pets      *petmemory.Repository
	adoptions *Repository
	now       func() time.Time
}

// NewUnitOfWork binds the pets and adoptions in-memory repositories.
func NewUnitOfWork(pets *petmemory.Repository, adoptions *Repository) *UnitOfWork {
	return &UnitOfWork{pets: pets, adoptions: adoptions, now: time.Now}
}

// WithClock overrides the time source used for staged metadata.
func (u *UnitOfWork) WithClock(now func() time.Time) {
	if now != nil {
		u.now = now
	}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	tx := &memoryTx{
		uow:       u,
		pets:      map[string]*pettypes.PetProjection{},
		adoptions: map[string]*storedAdoption{},
		base:      u.adoptions.snapshot(),
	}
	if err := fn(ctx, ports.Stores{Pets: (*txPets)(tx), Adoptions: (*txAdoptions)(tx)}); err != nil {
		return err
	}
	return tx.commit(ctx)
}

type memoryTx struct {
	uow       *UnitOfWork
	pets      map[string]*pettypes.PetProjection
	adoptions map[string]*storedAdoption
	base      map[string]*storedAdoption
}

// commit copies the staged pet status onto the latest stored pet so that profile edits
// made outside the unit of work are kept.
func (tx *memoryTx) commit(ctx context.Context) error {
	for id, staged := range tx.pets {
		current, err := tx.uow.pets.GetByID(ctx, id)
		if errors.Is(err, petports.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		current.Pet.Status = staged.Pet.Status
		current.Pet.AdoptedBy = staged.Pet.AdoptedBy
		if _, err := tx.uow.pets.Save(ctx, current.Pet); err != nil {
			return err
		}
	}
	tx.uow.adoptions.apply(tx.adoptions)
	return nil
}

func (tx *memoryTx) view() map[string]*storedAdoption {
	merged := make(map[string]*storedAdoption, len(tx.base)+len(tx.adoptions))
	for id, entry := range tx.base {
		merged[id] = entry
	}
	for id, entry := range tx.adoptions {
		merged[id] = entry
	}
	return merged
}

type txPets memoryTx

func (p *txPets) GetByID(ctx context.Context, id string) (*pettypes.PetProjection, error) {
	if staged, ok := p.pets[id]; ok {
		return pettypes.NewPetProjection(staged.Pet.Clone(), staged.Metadata.CreatedAt, staged.Metadata.UpdatedAt), nil
	}
	return p.uow.pets.GetByID(ctx, id)
}

func (p *txPets) GetByIDForUpdate(ctx context.Context, id string) (*pettypes.PetProjection, error) {
	return p.GetByID(ctx, id)
}

func (p *txPets) Save(ctx context.Context, pet *petdomain.Pet) (*pettypes.PetProjection, error) {
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	now := p.uow.now()
	metadata := projection.Created(now)
	if existing, err := p.GetByID(ctx, pet.ID); err == nil {
		metadata.CreatedAt = existing.Metadata.CreatedAt
	}
	staged := &pettypes.PetProjection{Pet: pet.Clone(), Metadata: metadata}
	p.pets[pet.ID] = staged
	return pettypes.NewPetProjection(pet.Clone(), metadata.CreatedAt, metadata.UpdatedAt), nil
}

func (p *txPets) List(ctx context.Context) ([]*pettypes.PetProjection, error) {
	list, err := p.uow.pets.List(ctx)
	if err != nil {
		return nil, err
	}
	for i, item := range list {
		if staged, ok := p.pets[item.Pet.ID]; ok {
			list[i] = pettypes.NewPetProjection(staged.Pet.Clone(), staged.Metadata.CreatedAt, staged.Metadata.UpdatedAt)
		}
	}
	return list, nil
}

type txAdoptions memoryTx

func (a *txAdoptions) Create(_ context.Context, adoption *domain.Adoption) (*adoptiontypes.AdoptionProjection, error) {
	if adoption == nil {
		return nil, errors.New("cannot create nil adoption")
	}
	if _, exists := (*memoryTx)(a).view()[adoption.ID]; exists {
		return nil, errors.New("adoption id already exists")
	}
	now := a.uow.now()
	stored := &storedAdoption{adoption: adoption.Clone(), metadata: projection.Created(now)}
	a.adoptions[adoption.ID] = stored
	return stored.projection(), nil
}

func (a *txAdoptions) Update(_ context.Context, adoption *domain.Adoption) (*adoptiontypes.AdoptionProjection, error) {
	if adoption == nil {
		return nil, errors.New("cannot update nil adoption")
	}
	existing, ok := (*memoryTx)(a).view()[adoption.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	stored := &storedAdoption{
		adoption: adoption.Clone(),
		metadata: existing.metadata.Touch(a.uow.now()),
	}
	a.adoptions[adoption.ID] = stored
	return stored.projection(), nil
}

func (a *txAdoptions) GetByID(_ context.Context, id string) (*adoptiontypes.AdoptionProjection, error) {
	entry, ok := (*memoryTx)(a).view()[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return entry.projection(), nil
}

func (a *txAdoptions) List(_ context.Context, filter ports.Filter) ([]*adoptiontypes.AdoptionProjection, error) {
	return listMatching((*memoryTx)(a).view(), filter), nil
}

func (a *txAdoptions) Count(_ context.Context, filter ports.Filter) (int64, error) {
	return int64(len(listMatching((*memoryTx)(a).view(), filter))), nil
}
