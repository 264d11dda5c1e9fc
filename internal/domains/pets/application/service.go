package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
)

var _ ports.Service = (*Service)(nil)

// Service orchestrates the pets bounded context use cases.
type Service struct {
	repo      ports.Repository
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option customises the service.
type Option func(*Service)

// WithPublisher announces listing lifecycle events.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger sets the logger used for event delivery failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source for events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how new pet ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewService wires the pets service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: events.Discard,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create posts a new listing as Available.
func (s *Service) Create(ctx context.Context, input pettypes.CreatePetInput) (*pettypes.PetProjection, error) {
	if !input.Actor.IsAdmin() {
		return nil, ErrForbidden
	}
	var profile domain.Profile
	applyMutation(&profile, input.PetMutationInput)
	pet, err := domain.NewPet(s.newID(), input.Actor.UserID, profile)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, pet)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.PetCreated{
		BaseEvent: domain.BaseEvent{Timestamp: s.now()},
		PetID:     saved.Pet.ID,
		Name:      saved.Pet.Profile.Name,
		PostedBy:  saved.Pet.PostedBy,
	})
	return saved, nil
}

// Update applies the supplied fields; status is never touched here.
func (s *Service) Update(ctx context.Context, input pettypes.UpdatePetInput) (*pettypes.PetProjection, error) {
	if !input.Actor.IsAdmin() {
		return nil, ErrForbidden
	}
	projection, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	profile := projection.Pet.Profile
	applyMutation(&profile, input.PetMutationInput)
	if err := projection.Pet.UpdateProfile(profile); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.UpdateProfile(ctx, projection.Pet.ID, projection.Pet.Profile)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// GetByID loads a single pet aggregate.
func (s *Service) GetByID(ctx context.Context, input pettypes.PetIdentifier) (*pettypes.PetProjection, error) {
	projection, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return projection, nil
}

// List returns one page of the catalogue.
func (s *Service) List(ctx context.Context, input pettypes.ListPetsInput) (*pettypes.PetPage, error) {
	input = input.Normalize()
	filter := ports.Filter{
		Species:  domain.Species(input.Species),
		Gender:   domain.Gender(input.Gender),
		Size:     domain.Size(input.Size),
		City:     input.City,
		PostedBy: input.PostedBy,
		MinAge:   input.MinAge,
		MaxAge:   input.MaxAge,
		Search:   input.Search,
		Offset:   input.Offset(),
		Limit:    input.Limit,
	}
	if input.Status != "" {
		status, err := domain.ParseStatus(input.Status)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Status = status
	}
	items, total, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return pettypes.NewPetPage(items, total, input.Page, input.Limit), nil
}

// Delete removes a listing.
func (s *Service) Delete(ctx context.Context, input pettypes.DeletePetInput) error {
	if !input.Actor.IsAdmin() {
		return ErrForbidden
	}
	projection, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return mapError(err)
	}
	if err := s.repo.Delete(ctx, input.ID); err != nil {
		return mapError(err)
	}
	s.publish(ctx, domain.PetDeleted{
		BaseEvent: domain.BaseEvent{Timestamp: s.now()},
		PetID:     input.ID,
		Name:      projection.Pet.Profile.Name,
	})
	return nil
}

func (s *Service) publish(ctx context.Context, evts ...events.Event) {
	if err := s.publisher.Publish(ctx, evts...); err != nil {
		s.logger.WarnContext(ctx, "pet event delivery failed", slog.String("error", err.Error()))
	}
}

func applyMutation(target *domain.Profile, input pettypes.PetMutationInput) {
	if input.Name != nil {
		target.Name = *input.Name
	}
	if input.Species != nil {
		target.Species = domain.Species(*input.Species)
	}
	if input.Breed != nil {
		target.Breed = *input.Breed
	}
	if input.Age != nil {
		target.Age = *input.Age
	}
	if input.AgeUnit != nil {
		target.AgeUnit = domain.AgeUnit(*input.AgeUnit)
	}
	if input.Gender != nil {
		target.Gender = domain.Gender(*input.Gender)
	}
	if input.Size != nil {
		target.Size = domain.Size(*input.Size)
	}
	if input.Color != nil {
		target.Color = *input.Color
	}
	if input.Description != nil {
		target.Description = *input.Description
	}
	if input.Images != nil {
		target.Images = append([]string{}, (*input.Images)...)
	}
	if input.Location != nil {
		target.Location = domain.Location{City: input.Location.City, State: input.Location.State, Country: input.Location.Country}
	}
	if input.Health != nil {
		target.Health = domain.Health{Vaccinated: input.Health.Vaccinated, SpayedNeutered: input.Health.SpayedNeutered, Notes: input.Health.Notes}
	}
	if input.SpecialNeeds != nil {
		target.SpecialNeeds = append([]string{}, (*input.SpecialNeeds)...)
	}
	if input.AdoptionFee != nil {
		target.AdoptionFee = *input.AdoptionFee
	}
}
