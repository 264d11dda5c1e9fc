package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory implementation used for demos/tests.
type Repository struct {
	mu   sync.RWMutex
	pets map[string]*storedPet
	now  func() time.Time
}

type storedPet struct {
	pet      *domain.Pet
	metadata projection.Metadata
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{
		pets: map[string]*storedPet{},
		now:  time.Now,
	}
}

// WithClock overrides the time source used for metadata.
func (r *Repository) WithClock(now func() time.Time) {
	if now == nil {
		return
	}
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

// Save inserts or replaces a pet while maintaining metadata.
func (r *Repository) Save(_ context.Context, pet *domain.Pet) (*pettypes.PetProjection, error) {
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	timestamp := r.now()
	metadata := projection.Created(timestamp)
	if entry, ok := r.pets[pet.ID]; ok {
		metadata.CreatedAt = entry.metadata.CreatedAt
	}
	stored := &storedPet{pet: pet.Clone(), metadata: metadata}
	r.pets[pet.ID] = stored
	return projectionCopy(stored), nil
}

// GetByID fetches a pet if present.
func (r *Repository) GetByID(_ context.Context, id string) (*pettypes.PetProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.pets[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// GetByIDForUpdate is GetByID; callers serialise through the adoptions unit of work.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id string) (*pettypes.PetProjection, error) {
	return r.GetByID(ctx, id)
}

// UpdateProfile replaces the descriptive attributes of a stored pet.
func (r *Repository) UpdateProfile(_ context.Context, id string, profile domain.Profile) (*pettypes.PetProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.pets[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	pet := entry.pet.Clone()
	pet.Profile = profile
	stored := &storedPet{pet: pet.Clone(), metadata: entry.metadata.Touch(r.now())}
	r.pets[id] = stored
	return projectionCopy(stored), nil
}

// Delete removes a pet.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.pets, id)
	return nil
}

// Find filters, sorts newest first and pages.
func (r *Repository) Find(_ context.Context, filter ports.Filter) ([]*pettypes.PetProjection, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*storedPet, 0, len(r.pets))
	for _, entry := range r.pets {
		if matchesFilter(entry.pet, filter) {
			matches = append(matches, entry)
		}
	}
	sortNewestFirst(matches)
	total := int64(len(matches))
	start := filter.Offset
	if start > len(matches) {
		start = len(matches)
	}
	end := len(matches)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	list := make([]*pettypes.PetProjection, 0, end-start)
	for _, entry := range matches[start:end] {
		list = append(list, projectionCopy(entry))
	}
	return list, total, nil
}

// List returns all pets, newest first.
func (r *Repository) List(_ context.Context) ([]*pettypes.PetProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*storedPet, 0, len(r.pets))
	for _, entry := range r.pets {
		entries = append(entries, entry)
	}
	sortNewestFirst(entries)
	list := make([]*pettypes.PetProjection, 0, len(entries))
	for _, entry := range entries {
		list = append(list, projectionCopy(entry))
	}
	return list, nil
}

func matchesFilter(p *domain.Pet, f ports.Filter) bool {
	switch {
	case f.Species != "" && p.Profile.Species != f.Species:
		return false
	case f.Gender != "" && p.Profile.Gender != f.Gender:
		return false
	case f.Size != "" && p.Profile.Size != f.Size:
		return false
	case f.Status != "" && p.Status != f.Status:
		return false
	case f.PostedBy != "" && p.PostedBy != f.PostedBy:
		return false
	case f.MinAge != nil && p.Profile.Age < *f.MinAge:
		return false
	case f.MaxAge != nil && p.Profile.Age > *f.MaxAge:
		return false
	}
	if f.City != "" && !containsFold(p.Profile.Location.City, f.City) {
		return false
	}
	if f.Search != "" {
		return containsFold(p.Profile.Name, f.Search) ||
			containsFold(p.Profile.Breed, f.Search) ||
			containsFold(p.Profile.Description, f.Search)
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sortNewestFirst(entries []*storedPet) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].metadata.CreatedAt, entries[j].metadata.CreatedAt
		if a.Equal(b) {
			return entries[i].pet.ID > entries[j].pet.ID
		}
		return a.After(b)
	})
}

func projectionCopy(entry *storedPet) *pettypes.PetProjection {
	return pettypes.NewPetProjection(entry.pet.Clone(), entry.metadata.CreatedAt, entry.metadata.UpdatedAt)
}
