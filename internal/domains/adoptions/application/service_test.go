package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/memory"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
)

var (
	admin = actor.Actor{UserID: "admin", Role: actor.RoleAdmin}
	userA = actor.Actor{UserID: "user-a", Role: actor.RoleUser}
	userB = actor.Actor{UserID: "user-b", Role: actor.RoleUser}
)

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) error {
	p.events = append(p.events, evts...)
	return nil
}

func (p *recordingPublisher) names() []string {
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.EventName())
	}
	return names
}

type fixture struct {
	svc       *Service
	pets      *petmemory.Repository
	adoptions *adoptionmemory.Repository
	publisher *recordingPublisher
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	pets := petmemory.NewRepository()
	adoptions := adoptionmemory.NewRepository()
	publisher := &recordingPublisher{}
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	seq := 0
	defaults := []Option{
		WithPublisher(publisher),
		WithIdempotencyStore(adoptionmemory.NewIdempotencyStore()),
		WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("adoption-%d", seq)
		}),
	}
	svc := NewService(adoptionmemory.NewUnitOfWork(pets, adoptions), append(defaults, opts...)...)
	return &fixture{svc: svc, pets: pets, adoptions: adoptions, publisher: publisher}
}

func (f *fixture) addPet(t *testing.T, id string) {
	t.Helper()
	pet, err := petdomain.NewPet(id, admin.UserID, petdomain.Profile{
		Name:        "Pet " + id,
		Species:     petdomain.SpeciesCat,
		Gender:      petdomain.GenderFemale,
		Size:        petdomain.SizeSmall,
		Description: "Calm",
	})
	require.NoError(t, err)
	_, err = f.pets.Save(context.Background(), pet)
	require.NoError(t, err)
}

func (f *fixture) petStatus(t *testing.T, id string) (petdomain.Status, string) {
	t.Helper()
	pet, err := f.pets.GetByID(context.Background(), id)
	require.NoError(t, err)
	return pet.Pet.Status, pet.Pet.AdoptedBy
}

func (f *fixture) seedAdoption(t *testing.T, id, petID, applicant string, status domain.Status) {
	t.Helper()
	a, err := domain.NewAdoption(id, petID, applicant, domain.ApplicantInfo{AgreeToTerms: true}, domain.ContactInfo{}, "", time.Now())
	require.NoError(t, err)
	a.Status = status
	_, err = f.adoptions.Create(context.Background(), a)
	require.NoError(t, err)
}

func submission(a actor.Actor, petID string) adoptiontypes.SubmitInput {
	return adoptiontypes.SubmitInput{
		Actor: a,
		PetID: petID,
		ApplicantInfo: adoptiontypes.ApplicantInfoInput{
			LivingSituation:   "House with garden",
			ReasonForAdoption: "Company",
			AgreeToTerms:      true,
		},
	}
}

func decision(id, status string) adoptiontypes.DecideInput {
	return adoptiontypes.DecideInput{Actor: admin, AdoptionID: id, Status: status}
}

func TestSubmit_MovesPetToPending(t *testing.T) {
	f := newFixture(t)
	f.addPet(t, "x")

	result, err := f.svc.Submit(context.Background(), submission(userA, "x"))
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, result.Adoption.Adoption.Status)
	require.Equal(t, petdomain.StatusPending, result.Pet.Pet.Status)
	require.False(t, result.Replayed)

	status, _ := f.petStatus(t, "x")
	require.Equal(t, petdomain.StatusPending, status)
	require.Equal(t, []string{"adoptions.adoption.submitted", "pets.pet.status_changed"}, f.publisher.names())
}

func TestSubmit_RejectedPreconditionsLeaveStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "x")
	f.addPet(t, "held")
	_, err := f.svc.SetManualStatus(ctx, adoptiontypes.ManualStatusInput{Actor: admin, PetID: "held", Status: "Not Available"})
	require.NoError(t, err)

	noTerms := submission(userA, "x")
	noTerms.ApplicantInfo.AgreeToTerms = false

	cases := map[string]struct {
		input adoptiontypes.SubmitInput
		want  error
	}{
		"missing pet":     {submission(userA, "nope"), ErrNotFound},
		"pet on hold":     {submission(userA, "held"), ErrInvalidState},
		"terms declined":  {noTerms, ErrValidation},
		"anonymous":       {submission(actor.Actor{}, "x"), ErrUnauthorized},
		"admin applicant": {submission(admin, "x"), ErrUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, tc.input)
			require.ErrorIs(t, err, tc.want)
		})
	}

	all, err := f.adoptions.List(ctx, ports.Filter{})
	require.NoError(t, err)
	require.Empty(t, all)
	status, _ := f.petStatus(t, "x")
	require.Equal(t, petdomain.StatusAvailable, status)
}

func TestSubmit_DuplicateActiveApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "x")
	f.seedAdoption(t, "old", "x", userA.UserID, domain.StatusApproved)

	_, err := f.svc.Submit(ctx, submission(userA, "x"))
	require.ErrorIs(t, err, ErrDuplicate)

	count, err := f.adoptions.Count(ctx, ports.Filter{PetID: "x"})
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

// Pet X Available; A applies; B is turned away; rejecting A frees X.
func TestScenario_RejectionReleasesPet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "x")

	a1, err := f.svc.Submit(ctx, submission(userA, "x"))
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, submission(userB, "x"))
	require.ErrorIs(t, err, ErrInvalidState)

	result, err := f.svc.Decide(ctx, decision(a1.Adoption.Adoption.ID, "Rejected"))
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, result.Adoption.Adoption.Status)
	require.Equal(t, admin.UserID, result.Adoption.Adoption.ReviewedBy)
	require.NotNil(t, result.Adoption.Adoption.ReviewDate)
	require.Equal(t, petdomain.StatusAvailable, result.Pet.Pet.Status)

	status, _ := f.petStatus(t, "x")
	require.Equal(t, petdomain.StatusAvailable, status)
}

// Pet Y has two pending applications; approving A adopts Y and leaves B pending.
func TestScenario_ApprovalLeavesCompetingPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "y")
	f.seedAdoption(t, "ya", "y", userA.UserID, domain.StatusPending)
	f.seedAdoption(t, "yb", "y", userB.UserID, domain.StatusPending)

	result, err := f.svc.Decide(ctx, decision("ya", "Approved"))
	require.NoError(t, err)
	require.Equal(t, petdomain.StatusAdopted, result.Pet.Pet.Status)
	require.Equal(t, userA.UserID, result.Pet.Pet.AdoptedBy)

	other, err := f.adoptions.GetByID(ctx, "yb")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, other.Adoption.Status)
}

func TestDecide_AutoRejectCompeting(t *testing.T) {
	f := newFixture(t, WithPolicy(Policy{AutoRejectCompeting: true}))
	ctx := context.Background()
	f.addPet(t, "y")
	f.seedAdoption(t, "ya", "y", userA.UserID, domain.StatusPending)
	f.seedAdoption(t, "yb", "y", userB.UserID, domain.StatusPending)

	_, err := f.svc.Decide(ctx, decision("ya", "Approved"))
	require.NoError(t, err)

	other, err := f.adoptions.GetByID(ctx, "yb")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, other.Adoption.Status)
	require.Equal(t, autoRejectNote, other.Adoption.Notes)
	status, adopter := f.petStatus(t, "y")
	require.Equal(t, petdomain.StatusAdopted, status)
	require.Equal(t, userA.UserID, adopter)
}

func TestDecide_RejectWithOthersPendingKeepsPetPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "y")
	f.seedAdoption(t, "ya", "y", userA.UserID, domain.StatusPending)
	f.seedAdoption(t, "yb", "y", userB.UserID, domain.StatusPending)

	result, err := f.svc.Decide(ctx, decision("ya", "Rejected"))
	require.NoError(t, err)
	require.Equal(t, petdomain.StatusPending, result.Pet.Pet.Status)
}

func TestDecide_BlocksSecondApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "y")
	f.seedAdoption(t, "ya", "y", userA.UserID, domain.StatusApproved)
	f.seedAdoption(t, "yb", "y", userB.UserID, domain.StatusPending)

	_, err := f.svc.Decide(ctx, decision("yb", "Approved"))
	require.ErrorIs(t, err, ErrInvalidState)

	other, err := f.adoptions.GetByID(ctx, "yb")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, other.Adoption.Status)
}

func TestDecide_RedecideAllowedUnlessStrict(t *testing.T) {
	ctx := context.Background()

	lenient := newFixture(t)
	lenient.addPet(t, "x")
	a1, err := lenient.svc.Submit(ctx, submission(userA, "x"))
	require.NoError(t, err)
	_, err = lenient.svc.Decide(ctx, decision(a1.Adoption.Adoption.ID, "Approved"))
	require.NoError(t, err)
	result, err := lenient.svc.Decide(ctx, decision(a1.Adoption.Adoption.ID, "Rejected"))
	require.NoError(t, err)
	require.Equal(t, petdomain.StatusAvailable, result.Pet.Pet.Status)
	require.Empty(t, result.Pet.Pet.AdoptedBy)

	strict := newFixture(t, WithPolicy(Policy{StrictDecisions: true}))
	strict.addPet(t, "x")
	a2, err := strict.svc.Submit(ctx, submission(userA, "x"))
	require.NoError(t, err)
	_, err = strict.svc.Decide(ctx, decision(a2.Adoption.Adoption.ID, "Approved"))
	require.NoError(t, err)
	_, err = strict.svc.Decide(ctx, decision(a2.Adoption.Adoption.ID, "Rejected"))
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestDecide_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "x")
	a1, err := f.svc.Submit(ctx, submission(userA, "x"))
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, adoptiontypes.DecideInput{Actor: userA, AdoptionID: a1.Adoption.Adoption.ID, Status: "Approved"})
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.svc.Decide(ctx, decision(a1.Adoption.Adoption.ID, "Pending"))
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Decide(ctx, decision("missing", "Approved"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDecide_ToleratesMissingPet(t *testing.T) {
	f := newFixture(t)
	f.seedAdoption(t, "orphan", "gone", userA.UserID, domain.StatusPending)

	result, err := f.svc.Decide(context.Background(), decision("orphan", "Rejected"))
	require.NoError(t, err)
	require.Nil(t, result.Pet)
	require.Equal(t, domain.StatusRejected, result.Adoption.Adoption.Status)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "x")
	a1, err := f.svc.Submit(ctx, submission(userA, "x"))
	require.NoError(t, err)
	id := a1.Adoption.Adoption.ID

	_, err = f.svc.Cancel(ctx, adoptiontypes.CancelInput{Actor: userB, AdoptionID: id})
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.svc.Cancel(ctx, adoptiontypes.CancelInput{Actor: admin, AdoptionID: id})
	require.ErrorIs(t, err, ErrUnauthorized)

	result, err := f.svc.Cancel(ctx, adoptiontypes.CancelInput{Actor: userA, AdoptionID: id})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, result.Adoption.Adoption.Status)
	require.Equal(t, petdomain.StatusAvailable, result.Pet.Pet.Status)

	_, err = f.svc.Cancel(ctx, adoptiontypes.CancelInput{Actor: userA, AdoptionID: id})
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = f.svc.Cancel(ctx, adoptiontypes.CancelInput{Actor: userA, AdoptionID: "missing"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCancel_AdminIsRejectedBeforeLookup(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Cancel(context.Background(), adoptiontypes.CancelInput{Actor: admin, AdoptionID: "missing"})
	require.ErrorIs(t, err, ErrUnauthorized)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestSubmit_IdempotencyKeyReplaysAndDetectsConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "x")
	f.addPet(t, "z")

	input := submission(userA, "x")
	input.IdempotencyKey = "key-1"
	first, err := f.svc.Submit(ctx, input)
	require.NoError(t, err)

	again, err := f.svc.Submit(ctx, input)
	require.NoError(t, err)
	require.True(t, again.Replayed)
	require.Equal(t, first.Adoption.Adoption.ID, again.Adoption.Adoption.ID)
	require.Equal(t, petdomain.StatusPending, again.Pet.Pet.Status)

	changed := submission(userA, "z")
	changed.IdempotencyKey = "key-1"
	_, err = f.svc.Submit(ctx, changed)
	require.ErrorIs(t, err, ErrIdempotencyConflict)

	stolen := submission(userB, "x")
	stolen.IdempotencyKey = "key-1"
	_, err = f.svc.Submit(ctx, stolen)
	require.ErrorIs(t, err, ErrIdempotencyConflict)

	count, err := f.adoptions.Count(ctx, ports.Filter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestSubmit_AdmissionRunsOnlyForNewSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "x")
	refused := errors.New("over limit")
	calls := 0
	admit := func(context.Context) error {
		calls++
		if calls > 1 {
			return refused
		}
		return nil
	}

	input := submission(userA, "x")
	input.IdempotencyKey = "key-1"
	input.Admit = admit
	_, err := f.svc.Submit(ctx, input)
	require.NoError(t, err)

	replayed, err := f.svc.Submit(ctx, input)
	require.NoError(t, err)
	require.True(t, replayed.Replayed)
	require.Equal(t, 1, calls)

	f.addPet(t, "y")
	fresh := submission(userA, "y")
	fresh.Admit = admit
	_, err = f.svc.Submit(ctx, fresh)
	require.ErrorIs(t, err, refused)

	count, err := f.adoptions.Count(ctx, ports.Filter{PetID: "y"})
	require.NoError(t, err)
	require.Zero(t, count)
}

type staticDirectory struct {
	contact domain.ContactInfo
	err     error
}

func (d staticDirectory) ContactInfo(context.Context, string) (domain.ContactInfo, error) {
	return d.contact, d.err
}

func TestSubmit_ContactInfoFallsBackToProfile(t *testing.T) {
	profile := domain.ContactInfo{Email: "a@example.com", Phone: "555"}
	f := newFixture(t, WithApplicantDirectory(staticDirectory{contact: profile}))
	ctx := context.Background()
	f.addPet(t, "x")
	f.addPet(t, "z")

	result, err := f.svc.Submit(ctx, submission(userA, "x"))
	require.NoError(t, err)
	require.Equal(t, profile, result.Adoption.Adoption.ContactInfo)

	explicit := submission(userA, "z")
	explicit.ContactInfo = &adoptiontypes.ContactInfoInput{Email: "other@example.com"}
	result, err = f.svc.Submit(ctx, explicit)
	require.NoError(t, err)
	require.Equal(t, "other@example.com", result.Adoption.Adoption.ContactInfo.Email)
	require.Empty(t, result.Adoption.Adoption.ContactInfo.Phone)

	failing := newFixture(t, WithApplicantDirectory(staticDirectory{err: errors.New("down")}))
	failing.addPet(t, "x")
	result, err = failing.svc.Submit(ctx, submission(userA, "x"))
	require.NoError(t, err)
	require.True(t, result.Adoption.Adoption.ContactInfo.Empty())
}

func TestSetManualStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "x")

	_, err := f.svc.SetManualStatus(ctx, adoptiontypes.ManualStatusInput{Actor: userA, PetID: "x", Status: "Not Available"})
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.svc.SetManualStatus(ctx, adoptiontypes.ManualStatusInput{Actor: admin, PetID: "x", Status: "Adopted"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.SetManualStatus(ctx, adoptiontypes.ManualStatusInput{Actor: admin, PetID: "x", Status: "bogus"})
	require.ErrorIs(t, err, ErrValidation)

	a1, err := f.svc.Submit(ctx, submission(userA, "x"))
	require.NoError(t, err)

	held, err := f.svc.SetManualStatus(ctx, adoptiontypes.ManualStatusInput{Actor: admin, PetID: "x", Status: "Not Available"})
	require.NoError(t, err)
	require.Equal(t, petdomain.StatusNotAvailable, held.Pet.Status)

	// A release re-derives from the applications instead of forcing Available.
	released, err := f.svc.SetManualStatus(ctx, adoptiontypes.ManualStatusInput{Actor: admin, PetID: "x", Status: "Available"})
	require.NoError(t, err)
	require.Equal(t, petdomain.StatusPending, released.Pet.Status)

	_, err = f.svc.Decide(ctx, decision(a1.Adoption.Adoption.ID, "Approved"))
	require.NoError(t, err)
	_, err = f.svc.SetManualStatus(ctx, adoptiontypes.ManualStatusInput{Actor: admin, PetID: "x", Status: "Not Available"})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestHold_SurvivesRejectionButNotApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "y")
	f.seedAdoption(t, "ya", "y", userA.UserID, domain.StatusPending)
	f.seedAdoption(t, "yb", "y", userB.UserID, domain.StatusPending)
	_, err := f.svc.SetManualStatus(ctx, adoptiontypes.ManualStatusInput{Actor: admin, PetID: "y", Status: "Not Available"})
	require.NoError(t, err)

	result, err := f.svc.Decide(ctx, decision("ya", "Rejected"))
	require.NoError(t, err)
	require.Equal(t, petdomain.StatusNotAvailable, result.Pet.Pet.Status)

	result, err = f.svc.Decide(ctx, decision("yb", "Approved"))
	require.NoError(t, err)
	require.Equal(t, petdomain.StatusAdopted, result.Pet.Pet.Status)
	require.Equal(t, userB.UserID, result.Pet.Pet.AdoptedBy)
}

func TestReconcile_RepairsDriftedPets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "drifted")
	f.addPet(t, "fine")
	f.seedAdoption(t, "d1", "drifted", userA.UserID, domain.StatusApproved)

	_, err := f.svc.Reconcile(ctx, adoptiontypes.ReconcileInput{Actor: userA})
	require.ErrorIs(t, err, ErrUnauthorized)

	changes, err := f.svc.Reconcile(ctx, adoptiontypes.ReconcileInput{Actor: admin})
	require.NoError(t, err)
	require.Equal(t, []adoptiontypes.ReconcileChange{{
		PetID:     "drifted",
		From:      petdomain.StatusAvailable,
		To:        petdomain.StatusAdopted,
		AdoptedBy: userA.UserID,
	}}, changes)

	changes, err = f.svc.Reconcile(ctx, adoptiontypes.ReconcileInput{Actor: admin, PetID: "drifted"})
	require.NoError(t, err)
	require.Empty(t, changes)

	_, err = f.svc.Reconcile(ctx, adoptiontypes.ReconcileInput{Actor: admin, PetID: "missing"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetAndList_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPet(t, "x")
	f.addPet(t, "z")
	a1, err := f.svc.Submit(ctx, submission(userA, "x"))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, submission(userB, "z"))
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, adoptiontypes.GetAdoptionInput{Actor: userA, AdoptionID: a1.Adoption.Adoption.ID})
	require.NoError(t, err)
	require.Equal(t, "x", got.Adoption.PetID)
	_, err = f.svc.Get(ctx, adoptiontypes.GetAdoptionInput{Actor: userB, AdoptionID: a1.Adoption.Adoption.ID})
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.svc.Get(ctx, adoptiontypes.GetAdoptionInput{Actor: admin, AdoptionID: a1.Adoption.Adoption.ID})
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, adoptiontypes.ListAdoptionsInput{Actor: userA, PetID: "z"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, userA.UserID, mine[0].Adoption.ApplicantID)

	all, err := f.svc.List(ctx, adoptiontypes.ListAdoptionsInput{Actor: admin})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "z", all[0].Adoption.PetID)

	filtered, err := f.svc.List(ctx, adoptiontypes.ListAdoptionsInput{Actor: admin, PetID: "x", Status: "Pending"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	_, err = f.svc.List(ctx, adoptiontypes.ListAdoptionsInput{Actor: admin, Status: "Unknown"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.List(ctx, adoptiontypes.ListAdoptionsInput{})
	require.ErrorIs(t, err, ErrUnauthorized)
}

// Random submissions, decisions and cancellations never break the derived pet status.
func TestPetStatusAlwaysMatchesApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	petIDs := []string{"p1", "p2", "p3"}
	for _, id := range petIDs {
		f.addPet(t, id)
	}
	users := []actor.Actor{userA, userB, {UserID: "user-c", Role: actor.RoleUser}}
	targets := []string{"Approved", "Rejected", "Cancelled"}

	for step := 0; step < 300; step++ {
		existing, err := f.adoptions.List(ctx, ports.Filter{})
		require.NoError(t, err)
		switch op := rng.Intn(3); {
		case op == 0 || len(existing) == 0:
			_, _ = f.svc.Submit(ctx, submission(users[rng.Intn(len(users))], petIDs[rng.Intn(len(petIDs))]))
		case op == 1:
			target := existing[rng.Intn(len(existing))].Adoption
			_, _ = f.svc.Decide(ctx, decision(target.ID, targets[rng.Intn(len(targets))]))
		default:
			target := existing[rng.Intn(len(existing))].Adoption
			_, _ = f.svc.Cancel(ctx, adoptiontypes.CancelInput{Actor: actor.Actor{UserID: target.ApplicantID, Role: actor.RoleUser}, AdoptionID: target.ID})
		}

		for _, petID := range petIDs {
			approved, err := f.adoptions.List(ctx, ports.Filter{PetID: petID, Statuses: []domain.Status{domain.StatusApproved}})
			require.NoError(t, err)
			pending, err := f.adoptions.Count(ctx, ports.Filter{PetID: petID, Statuses: []domain.Status{domain.StatusPending}})
			require.NoError(t, err)
			require.LessOrEqual(t, len(approved), 1, "step %d pet %s", step, petID)

			status, adopter := f.petStatus(t, petID)
			require.Equal(t, domain.DeriveStatus(len(approved), int(pending)), status, "step %d pet %s", step, petID)
			if len(approved) == 1 {
				require.Equal(t, approved[0].Adoption.ApplicantID, adopter)
			} else {
				require.Empty(t, adopter)
			}
		}
	}
}

func TestErrorKindRoundTrip(t *testing.T) {
	err := wrap(ErrInvalidState, errPetUnavailable)
	kind := ErrorKind(err)
	require.Equal(t, "invalid_state", kind)

	rebuilt := ErrorFromKind(kind, err.Error())
	require.ErrorIs(t, rebuilt, ErrInvalidState)
	require.Equal(t, err.Error(), rebuilt.Error())

	require.Empty(t, ErrorKind(errors.New("boom")))
	require.EqualError(t, ErrorFromKind("", "boom"), "boom")
}
