package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
)

var _ ports.Service = (*Service)(nil)

// Policy toggles the optional decision rules.
type Policy struct {
	// StrictDecisions rejects a decision on an application that is already terminal.
	StrictDecisions bool
	// AutoRejectCompeting rejects the other pending applications of a pet once one is approved.
	AutoRejectCompeting bool
}

const autoRejectNote = "Another application for this pet was approved."

// Service keeps every pet's status consistent with its adoption applications. Each
// mutation runs in one unit of work that locks the pet first.
type Service struct {
	uow         ports.UnitOfWork
	directory   ports.ApplicantDirectory
	idempotency ports.IdempotencyStore
	publisher   events.Publisher
	logger      *slog.Logger
	policy      Policy
	now         func() time.Time
	newID       func() string
}

type Option func(*Service)

// WithApplicantDirectory fills omitted contact details from the applicant's profile.
func WithApplicantDirectory(d ports.ApplicantDirectory) Option {
	return func(s *Service) { s.directory = d }
}

// WithIdempotencyStore enables Idempotency-Key handling on submissions.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

// WithPublisher announces adoption and pet status events after commit.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithPolicy(p Policy) Option {
	return func(s *Service) { s.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewService wires the adoption rules over a unit of work.
func NewService(uow ports.UnitOfWork, opts ...Option) *Service {
	s := &Service{
		uow:       uow,
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

// Submit opens a Pending application and moves the pet to Pending. Every precondition is
// checked before the first write; a failure leaves both collections untouched.
func (s *Service) Submit(ctx context.Context, input adoptiontypes.SubmitInput) (*adoptiontypes.SubmitResult, error) {
	if input.Actor.Anonymous() {
		return nil, wrap(ErrUnauthorized, errNotAuthenticated)
	}
	if input.Actor.IsAdmin() {
		return nil, wrap(ErrUnauthorized, errAdminCannotApply)
	}

	var fingerprint string
	if input.IdempotencyKey != "" && s.idempotency != nil {
		hash, err := FingerprintSubmission(input)
		if err != nil {
			return nil, err
		}
		fingerprint = hash
		replayed, err := s.replay(ctx, input.IdempotencyKey, fingerprint)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}
	if input.Admit != nil {
		if err := input.Admit(ctx); err != nil {
			return nil, err
		}
	}

	now := s.now()
	adoption, err := domain.NewAdoption(s.newID(), input.PetID, input.Actor.UserID,
		input.ApplicantInfo.ToDomain(), s.contactInfo(ctx, input), input.Notes, now)
	if err != nil {
		return nil, mapError(err)
	}

	var (
		result     adoptiontypes.SubmitResult
		fromStatus petdomain.Status
	)
	err = s.uow.Do(ctx, func(ctx context.Context, st ports.Stores) error {
		pet, err := st.Pets.GetByIDForUpdate(ctx, adoption.PetID)
		if err != nil {
			return err
		}
		if !pet.Pet.IsAvailable() {
			return wrap(ErrInvalidState, errPetUnavailable)
		}
		active, err := st.Adoptions.Count(ctx, ports.Filter{
			PetID:       adoption.PetID,
			ApplicantID: adoption.ApplicantID,
			Statuses:    []domain.Status{domain.StatusPending, domain.StatusApproved},
		})
		if err != nil {
			return err
		}
		if active > 0 {
			return wrap(ErrDuplicate, errActiveApplication)
		}
		created, err := st.Adoptions.Create(ctx, adoption)
		if err != nil {
			return err
		}
		fromStatus = pet.Pet.Status
		if err := pet.Pet.MarkPending(); err != nil {
			return wrap(ErrInvalidState, err)
		}
		savedPet, err := st.Pets.Save(ctx, pet.Pet)
		if err != nil {
			return err
		}
		result = adoptiontypes.SubmitResult{Adoption: created, Pet: savedPet}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}

	if fingerprint != "" {
		s.remember(ctx, input.IdempotencyKey, fingerprint, adoption.ID)
	}
	s.publish(ctx,
		domain.AdoptionSubmitted{
			BaseEvent:   domain.BaseEvent{Timestamp: now},
			AdoptionID:  adoption.ID,
			PetID:       adoption.PetID,
			ApplicantID: adoption.ApplicantID,
		},
		statusChanged(adoption.PetID, fromStatus, result.Pet, now),
	)
	return &result, nil
}

// Decide records an admin decision and recomputes the pet from the adoption set.
func (s *Service) Decide(ctx context.Context, input adoptiontypes.DecideInput) (*adoptiontypes.DecisionResult, error) {
	if !input.Actor.IsAdmin() {
		return nil, wrap(ErrUnauthorized, errAdminOnly)
	}
	target, err := domain.ParseDecision(input.Status)
	if err != nil {
		return nil, mapError(err)
	}

	now := s.now()
	var (
		result  adoptiontypes.DecisionResult
		emitted []events.Event
	)
	err = s.uow.Do(ctx, func(ctx context.Context, st ports.Stores) error {
		adoption, pet, err := loadLocked(ctx, st, input.AdoptionID)
		if err != nil {
			return err
		}
		if s.policy.StrictDecisions && adoption.Status.Terminal() {
			return wrap(ErrInvalidState, domain.ErrAlreadyDecided)
		}
		if target == domain.StatusApproved {
			approved, err := st.Adoptions.Count(ctx, ports.Filter{
				PetID:     adoption.PetID,
				Statuses:  []domain.Status{domain.StatusApproved},
				ExcludeID: adoption.ID,
			})
			if err != nil {
				return err
			}
			if approved > 0 {
				return wrap(ErrInvalidState, errPetAlreadyAdopted)
			}
		}

		previous := adoption.Status
		if err := adoption.Decide(target, input.Actor.UserID, input.Notes, now); err != nil {
			return err
		}
		updated, err := st.Adoptions.Update(ctx, adoption)
		if err != nil {
			return err
		}
		emitted = append(emitted, decidedEvent(adoption, previous, now))

		if target == domain.StatusApproved && s.policy.AutoRejectCompeting {
			rejected, err := s.rejectCompeting(ctx, st, adoption, input.Actor.UserID, now)
			if err != nil {
				return err
			}
			emitted = append(emitted, rejected...)
		}

		result.Adoption = updated
		if pet == nil {
			s.logger.WarnContext(ctx, "adoption references a missing pet", slog.String("adoption.id", adoption.ID), slog.String("pet.id", adoption.PetID))
			return nil
		}
		from := pet.Pet.Status
		result.Pet, err = recompute(ctx, st, pet)
		if err != nil {
			return err
		}
		emitted = append(emitted, statusChanged(pet.Pet.ID, from, result.Pet, now))
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, emitted...)
	return &result, nil
}

// Cancel withdraws the caller's own pending application.
func (s *Service) Cancel(ctx context.Context, input adoptiontypes.CancelInput) (*adoptiontypes.DecisionResult, error) {
	if input.Actor.Anonymous() {
		return nil, wrap(ErrUnauthorized, errNotAuthenticated)
	}
	if input.Actor.IsAdmin() {
		return nil, wrap(ErrUnauthorized, errAdminCannotCancel)
	}
	now := s.now()
	var (
		result  adoptiontypes.DecisionResult
		emitted []events.Event
	)
	err := s.uow.Do(ctx, func(ctx context.Context, st ports.Stores) error {
		adoption, pet, err := loadLocked(ctx, st, input.AdoptionID)
		if err != nil {
			return err
		}
		if adoption.ApplicantID != input.Actor.UserID {
			return wrap(ErrUnauthorized, errNotApplicant)
		}
		if err := adoption.Cancel(); err != nil {
			return err
		}
		updated, err := st.Adoptions.Update(ctx, adoption)
		if err != nil {
			return err
		}
		result.Adoption = updated
		emitted = append(emitted, domain.AdoptionCancelled{
			BaseEvent:   domain.BaseEvent{Timestamp: now},
			AdoptionID:  adoption.ID,
			PetID:       adoption.PetID,
			ApplicantID: adoption.ApplicantID,
		})
		if pet == nil {
			return nil
		}
		from := pet.Pet.Status
		result.Pet, err = recompute(ctx, st, pet)
		if err != nil {
			return err
		}
		emitted = append(emitted, statusChanged(pet.Pet.ID, from, result.Pet, now))
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, emitted...)
	return &result, nil
}

// SetManualStatus holds a pet off the market (Not Available) or releases a hold
// (Available), after which the status is derived from the adoption set again.
func (s *Service) SetManualStatus(ctx context.Context, input adoptiontypes.ManualStatusInput) (*pettypes.PetProjection, error) {
	if !input.Actor.IsAdmin() {
		return nil, wrap(ErrUnauthorized, errAdminOnly)
	}
	target, err := petdomain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	if target != petdomain.StatusAvailable && target != petdomain.StatusNotAvailable {
		return nil, wrap(ErrValidation, errManualStatus)
	}

	now := s.now()
	var (
		result *pettypes.PetProjection
		from   petdomain.Status
	)
	err = s.uow.Do(ctx, func(ctx context.Context, st ports.Stores) error {
		pet, err := st.Pets.GetByIDForUpdate(ctx, input.PetID)
		if err != nil {
			return err
		}
		from = pet.Pet.Status
		if target == petdomain.StatusNotAvailable {
			if pet.Pet.Status == petdomain.StatusAdopted {
				return wrap(ErrInvalidState, errHoldAdopted)
			}
			if pet.Pet.OnHold() {
				result = pet
				return nil
			}
			pet.Pet.HoldManually()
			result, err = st.Pets.Save(ctx, pet.Pet)
			return err
		}
		tally, err := tallyFor(ctx, st.Adoptions, pet.Pet.ID)
		if err != nil {
			return err
		}
		derived := domain.DeriveStatus(tally.Approved, tally.Pending)
		if pet.Pet.Status == derived && pet.Pet.AdoptedBy == tally.Adopter {
			result = pet
			return nil
		}
		if err := pet.Pet.ApplyDerivedStatus(derived, tally.Adopter); err != nil {
			return err
		}
		result, err = st.Pets.Save(ctx, pet.Pet)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, statusChanged(input.PetID, from, result, now))
	return result, nil
}

// Reconcile re-derives the status of one pet, or of every pet, and reports the repairs.
func (s *Service) Reconcile(ctx context.Context, input adoptiontypes.ReconcileInput) ([]adoptiontypes.ReconcileChange, error) {
	if !input.Actor.IsAdmin() {
		return nil, wrap(ErrUnauthorized, errAdminOnly)
	}
	petIDs := []string{input.PetID}
	if input.PetID == "" {
		petIDs = nil
		err := s.uow.Do(ctx, func(ctx context.Context, st ports.Stores) error {
			pets, err := st.Pets.List(ctx)
			if err != nil {
				return err
			}
			for _, pet := range pets {
				petIDs = append(petIDs, pet.Pet.ID)
			}
			return nil
		})
		if err != nil {
			return nil, mapError(err)
		}
	}

	now := s.now()
	changes := make([]adoptiontypes.ReconcileChange, 0)
	for _, petID := range petIDs {
		var change *adoptiontypes.ReconcileChange
		err := s.uow.Do(ctx, func(ctx context.Context, st ports.Stores) error {
			pet, err := st.Pets.GetByIDForUpdate(ctx, petID)
			if err != nil {
				return err
			}
			from := pet.Pet.Status
			saved, err := recompute(ctx, st, pet)
			if err != nil {
				return err
			}
			if saved != pet {
				change = &adoptiontypes.ReconcileChange{PetID: petID, From: from, To: saved.Pet.Status, AdoptedBy: saved.Pet.AdoptedBy}
			}
			return nil
		})
		if err != nil {
			return changes, mapError(err)
		}
		if change != nil {
			changes = append(changes, *change)
			s.logger.InfoContext(ctx, "pet status reconciled",
				slog.String("pet.id", change.PetID),
				slog.String("from", string(change.From)),
				slog.String("to", string(change.To)),
			)
			s.publish(ctx, petdomain.PetStatusChanged{
				BaseEvent:  petdomain.BaseEvent{Timestamp: now},
				PetID:      change.PetID,
				FromStatus: change.From,
				ToStatus:   change.To,
				AdoptedBy:  change.AdoptedBy,
			})
		}
	}
	return changes, nil
}

// Get returns one application to its applicant or to an admin.
func (s *Service) Get(ctx context.Context, input adoptiontypes.GetAdoptionInput) (*adoptiontypes.AdoptionProjection, error) {
	if input.Actor.Anonymous() {
		return nil, wrap(ErrUnauthorized, errNotAuthenticated)
	}
	var result *adoptiontypes.AdoptionProjection
	err := s.uow.Do(ctx, func(ctx context.Context, st ports.Stores) error {
		found, err := st.Adoptions.GetByID(ctx, input.AdoptionID)
		if err != nil {
			return err
		}
		if !input.Actor.IsAdmin() && found.Adoption.ApplicantID != input.Actor.UserID {
			return wrap(ErrUnauthorized, errNotVisible)
		}
		result = found
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// List returns the caller's own applications, or any application for admins.
func (s *Service) List(ctx context.Context, input adoptiontypes.ListAdoptionsInput) ([]*adoptiontypes.AdoptionProjection, error) {
	if input.Actor.Anonymous() {
		return nil, wrap(ErrUnauthorized, errNotAuthenticated)
	}
	filter := ports.Filter{ApplicantID: input.Actor.UserID}
	if input.Actor.IsAdmin() {
		filter = ports.Filter{PetID: input.PetID}
		if input.Status != "" {
			status := domain.Status(input.Status)
			if status != domain.StatusPending && !status.Terminal() {
				return nil, wrap(ErrValidation, errUnknownStatus)
			}
			filter.Statuses = []domain.Status{status}
		}
	}
	var result []*adoptiontypes.AdoptionProjection
	err := s.uow.Do(ctx, func(ctx context.Context, st ports.Stores) error {
		var err error
		result, err = st.Adoptions.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// loadLocked reads the application, locks its pet, then reads the application again so
// the state used for the decision is the one guarded by the lock. A missing pet yields a
// nil projection.
func loadLocked(ctx context.Context, st ports.Stores, adoptionID string) (*domain.Adoption, *pettypes.PetProjection, error) {
	found, err := st.Adoptions.GetByID(ctx, adoptionID)
	if err != nil {
		return nil, nil, err
	}
	pet, err := st.Pets.GetByIDForUpdate(ctx, found.Adoption.PetID)
	if err != nil {
		if !isPetMissing(err) {
			return nil, nil, err
		}
		pet = nil
	}
	fresh, err := st.Adoptions.GetByID(ctx, adoptionID)
	if err != nil {
		return nil, nil, err
	}
	return fresh.Adoption, pet, nil
}

// recompute derives the pet status from the current adoption set and saves it when it
// moved. It returns the projection to report.
func recompute(ctx context.Context, st ports.Stores, pet *pettypes.PetProjection) (*pettypes.PetProjection, error) {
	tally, err := tallyFor(ctx, st.Adoptions, pet.Pet.ID)
	if err != nil {
		return nil, err
	}
	changed, err := domain.Reconcile(pet.Pet, tally)
	if err != nil {
		return nil, err
	}
	if !changed {
		return pet, nil
	}
	return st.Pets.Save(ctx, pet.Pet)
}

func tallyFor(ctx context.Context, repo ports.Repository, petID string) (domain.Tally, error) {
	approved, err := repo.List(ctx, ports.Filter{PetID: petID, Statuses: []domain.Status{domain.StatusApproved}})
	if err != nil {
		return domain.Tally{}, err
	}
	pending, err := repo.Count(ctx, ports.Filter{PetID: petID, Statuses: []domain.Status{domain.StatusPending}})
	if err != nil {
		return domain.Tally{}, err
	}
	tally := domain.Tally{Approved: len(approved), Pending: int(pending)}
	if len(approved) > 0 {
		tally.Adopter = approved[0].Adoption.ApplicantID
	}
	return tally, nil
}

func (s *Service) rejectCompeting(ctx context.Context, st ports.Stores, approved *domain.Adoption, reviewer string, now time.Time) ([]events.Event, error) {
	competing, err := st.Adoptions.List(ctx, ports.Filter{
		PetID:     approved.PetID,
		Statuses:  []domain.Status{domain.StatusPending},
		ExcludeID: approved.ID,
	})
	if err != nil {
		return nil, err
	}
	emitted := make([]events.Event, 0, len(competing))
	for _, other := range competing {
		adoption := other.Adoption
		if err := adoption.Decide(domain.StatusRejected, reviewer, autoRejectNote, now); err != nil {
			return nil, err
		}
		if _, err := st.Adoptions.Update(ctx, adoption); err != nil {
			return nil, err
		}
		emitted = append(emitted, decidedEvent(adoption, domain.StatusPending, now))
	}
	return emitted, nil
}

func (s *Service) replay(ctx context.Context, key, fingerprint string) (*adoptiontypes.SubmitResult, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if record.RequestHash != fingerprint {
		return nil, wrap(ErrIdempotencyConflict, errIdempotencyPayload)
	}
	var result *adoptiontypes.SubmitResult
	err = s.uow.Do(ctx, func(ctx context.Context, st ports.Stores) error {
		adoption, err := st.Adoptions.GetByID(ctx, record.AdoptionID)
		if err != nil {
			return err
		}
		result = &adoptiontypes.SubmitResult{Adoption: adoption, Replayed: true}
		pet, err := st.Pets.GetByID(ctx, adoption.Adoption.PetID)
		if err == nil {
			result.Pet = pet
		} else if !isPetMissing(err) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (s *Service) remember(ctx context.Context, key, fingerprint, adoptionID string) {
	now := s.now()
	_, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: fingerprint,
		AdoptionID:  adoptionID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to store idempotency key", slog.String("adoption.id", adoptionID), slog.String("error", err.Error()))
	}
}

func (s *Service) contactInfo(ctx context.Context, input adoptiontypes.SubmitInput) domain.ContactInfo {
	if in := input.ContactInfo; in != nil {
		contact := domain.ContactInfo{
			Phone:   in.Phone,
			Email:   in.Email,
			Address: domain.Address{Street: in.Street, City: in.City, State: in.State, ZipCode: in.ZipCode},
		}
		if !contact.Empty() {
			return contact
		}
	}
	if s.directory == nil {
		return domain.ContactInfo{}
	}
	contact, err := s.directory.ContactInfo(ctx, input.Actor.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "could not load applicant profile for contact info", slog.String("user.id", input.Actor.UserID), slog.String("error", err.Error()))
		return domain.ContactInfo{}
	}
	return contact
}

func (s *Service) publish(ctx context.Context, evts ...events.Event) {
	pending := make([]events.Event, 0, len(evts))
	for _, evt := range evts {
		if evt != nil {
			pending = append(pending, evt)
		}
	}
	if len(pending) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, pending...); err != nil {
		s.logger.WarnContext(ctx, "adoption event delivery failed", slog.String("error", err.Error()))
	}
}

func decidedEvent(adoption *domain.Adoption, previous domain.Status, now time.Time) events.Event {
	return domain.AdoptionDecided{
		BaseEvent:      domain.BaseEvent{Timestamp: now},
		AdoptionID:     adoption.ID,
		PetID:          adoption.PetID,
		ApplicantID:    adoption.ApplicantID,
		PreviousStatus: previous,
		Status:         adoption.Status,
		ReviewedBy:     adoption.ReviewedBy,
	}
}

// statusChanged returns nil when the pet kept its status.
func statusChanged(petID string, from petdomain.Status, pet *pettypes.PetProjection, now time.Time) events.Event {
	if pet == nil || pet.Pet == nil || pet.Pet.Status == from {
		return nil
	}
	return petdomain.PetStatusChanged{
		BaseEvent:  petdomain.BaseEvent{Timestamp: now},
		PetID:      petID,
		FromStatus: from,
		ToStatus:   pet.Pet.Status,
		AdoptedBy:  pet.Pet.AdoptedBy,
	}
}
