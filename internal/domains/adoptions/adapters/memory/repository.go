package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps applications in memory. Used directly it is safe for concurrent use;
// writes that must move together with a pet go through UnitOfWork.
type Repository struct {
	mu        sync.RWMutex
	adoptions map[string]*storedAdoption
	now       func() time.Time
}

type storedAdoption struct {
	adoption *domain.Adoption
	metadata projection.Metadata
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{adoptions: map[string]*storedAdoption{}, now: time.Now}
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

func (r *Repository) Create(_ context.Context, adoption *domain.Adoption) (*adoptiontypes.AdoptionProjection, error) {
	if adoption == nil {
		return nil, errors.New("cannot create nil adoption")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adoptions[adoption.ID]; exists {
		return nil, errors.New("adoption id already exists")
	}
	ts := r.now()
	stored := &storedAdoption{adoption: adoption.Clone(), metadata: projection.Created(ts)}
	r.adoptions[adoption.ID] = stored
	return stored.projection(), nil
}

func (r *Repository) Update(_ context.Context, adoption *domain.Adoption) (*adoptiontypes.AdoptionProjection, error) {
	if adoption == nil {
		return nil, errors.New("cannot update nil adoption")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.adoptions[adoption.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	stored := &storedAdoption{adoption: adoption.Clone(), metadata: entry.metadata.Touch(r.now())}
	r.adoptions[adoption.ID] = stored
	return stored.projection(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*adoptiontypes.AdoptionProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.adoptions[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return entry.projection(), nil
}

func (r *Repository) List(_ context.Context, filter ports.Filter) ([]*adoptiontypes.AdoptionProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return listMatching(r.adoptions, filter), nil
}

func (r *Repository) Count(_ context.Context, filter ports.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(listMatching(r.adoptions, filter))), nil
}

func (r *Repository) snapshot() map[string]*storedAdoption {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dup := make(map[string]*storedAdoption, len(r.adoptions))
	for id, entry := range r.adoptions {
		dup[id] = entry
	}
	return dup
}

func (r *Repository) apply(staged map[string]*storedAdoption) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range staged {
		r.adoptions[id] = entry
	}
}

func (e *storedAdoption) projection() *adoptiontypes.AdoptionProjection {
	return adoptiontypes.NewAdoptionProjection(e.adoption.Clone(), e.metadata.CreatedAt, e.metadata.UpdatedAt)
}

func listMatching(entries map[string]*storedAdoption, filter ports.Filter) []*adoptiontypes.AdoptionProjection {
	matches := make([]*storedAdoption, 0)
	for _, entry := range entries {
		if matchesFilter(entry.adoption, filter) {
			matches = append(matches, entry)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].adoption, matches[j].adoption
		if a.ApplicationDate.Equal(b.ApplicationDate) {
			return a.ID > b.ID
		}
		return a.ApplicationDate.After(b.ApplicationDate)
	})
	result := make([]*adoptiontypes.AdoptionProjection, 0, len(matches))
	for _, entry := range matches {
		result = append(result, entry.projection())
	}
	return result
}

func matchesFilter(a *domain.Adoption, filter ports.Filter) bool {
	if filter.PetID != "" && a.PetID != filter.PetID {
		return false
	}
	if filter.ApplicantID != "" && a.ApplicantID != filter.ApplicantID {
		return false
	}
	if filter.ExcludeID != "" && a.ID == filter.ExcludeID {
		return false
	}
	if len(filter.Statuses) == 0 {
		return true
	}
	for _, status := range filter.Statuses {
		if a.Status == status {
			return true
		}
	}
	return false
}
