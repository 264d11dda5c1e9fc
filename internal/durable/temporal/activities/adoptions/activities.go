package adoptions

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
)

const (
	// DecideActivityName applies an admin decision and recomputes the pet.
	DecideActivityName = "adoptions.activities.Decide"
	// NotifyApplicantActivityName tells the applicant about the decision.
	NotifyApplicantActivityName = "adoptions.activities.NotifyApplicant"
)

// NotifyApplicantInput identifies the decision to announce.
type NotifyApplicantInput struct {
	AdoptionID  string
	PetID       string
	ApplicantID string
	Status      domain.Status
}

// Activities groups activities that operate on the adoptions bounded context.
type Activities struct {
	service   adoptionports.Service
	publisher events.Publisher
	now       func() time.Time
}

func NewActivities(service adoptionports.Service, publisher events.Publisher) *Activities {
	if publisher == nil {
		publisher = events.Discard
	}
	return &Activities{service: service, publisher: publisher, now: time.Now}
}

// Decide runs the decision use case. Rule violations are returned as non-retryable
// application errors typed with the error kind so the caller can map them back.
func (a *Activities) Decide(ctx context.Context, input adoptiontypes.DecideInput) (*adoptiontypes.DecisionResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		return nil, errors.New("adoption decide activity not initialized")
	}
	logger.Info("Decide activity started", "adoptionId", input.AdoptionID, "status", input.Status)
	result, err := a.service.Decide(ctx, input)
	if err != nil {
		if kind := adoptionapp.ErrorKind(err); kind != "" {
			logger.Warn("Decide activity rejected", "adoptionId", input.AdoptionID, "reason", kind, "error", err)
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), kind, nil)
		}
		logger.Error("Decide activity failed", "adoptionId", input.AdoptionID, "error", err)
		return nil, err
	}
	logger.Info("Decide activity completed", "adoptionId", input.AdoptionID)
	return result, nil
}

// NotifyApplicant publishes the applicant notification. Heartbeat details make a retried
// attempt skip a publish that already went out.
func (a *Activities) NotifyApplicant(ctx context.Context, input NotifyApplicantInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil {
		return errors.New("adoption notify activity not initialized")
	}
	var hb notifyHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("NotifyApplicant already completed in prior attempt; skipping", "adoptionId", input.AdoptionID)
		return nil
	}
	event := domain.NewApplicantNotified(&domain.Adoption{
		ID:          input.AdoptionID,
		PetID:       input.PetID,
		ApplicantID: input.ApplicantID,
		Status:      input.Status,
	}, a.now())
	if err := a.publisher.Publish(ctx, event); err != nil {
		logger.Error("NotifyApplicant failed", "adoptionId", input.AdoptionID, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, notifyHeartbeat{Completed: true})
	logger.Info("NotifyApplicant completed", "adoptionId", input.AdoptionID)
	return nil
}

type notifyHeartbeat struct {
	Completed bool
}
