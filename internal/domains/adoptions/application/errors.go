package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

// Error categories returned by every use case. The wrapped reason carries the detail.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state")
	ErrDuplicate           = errors.New("duplicate application")
	ErrUnauthorized        = errors.New("not authorized")
	ErrValidation          = errors.New("validation failed")
	ErrIdempotencyConflict = errors.New("idempotency key reused")
)

var (
	errNotAuthenticated   = errors.New("authentication required")
	errAdminCannotApply   = errors.New("admins cannot submit adoption applications")
	errAdminCannotCancel  = errors.New("admins cannot cancel applications, decide them instead")
	errNotApplicant       = errors.New("only the applicant can cancel this application")
	errAdminOnly          = errors.New("operation requires admin role")
	errNotVisible         = errors.New("application belongs to another user")
	errPetUnavailable     = errors.New("pet is not available for adoption")
	errActiveApplication  = errors.New("you already have an active application for this pet")
	errPetAlreadyAdopted  = errors.New("pet already has an approved application")
	errManualStatus       = errors.New("manual status must be Available or Not Available")
	errHoldAdopted        = errors.New("adopted pets cannot be put on hold")
	errUnknownStatus      = errors.New("unknown adoption status")
	errIdempotencyPayload = errors.New("idempotency key was used with a different request")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isCategorised(err) {
		return err
	}
	switch {
	case errors.Is(err, ports.ErrNotFound), errors.Is(err, petports.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return fmt.Errorf("%w: %w", ErrIdempotencyConflict, err)
	case errors.Is(err, domain.ErrNotPending), errors.Is(err, domain.ErrAlreadyDecided):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	case errors.Is(err, domain.ErrTermsNotAccepted),
		errors.Is(err, domain.ErrMissingPet),
		errors.Is(err, domain.ErrMissingApplicant),
		errors.Is(err, domain.ErrInvalidDecision),
		errors.Is(err, petdomain.ErrInvalidStatus):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return err
}

func isCategorised(err error) bool {
	for _, category := range categories {
		if errors.Is(err, category.err) {
			return true
		}
	}
	return false
}

var categories = []struct {
	kind string
	err  error
}{
	{"not_found", ErrNotFound},
	{"invalid_state", ErrInvalidState},
	{"duplicate", ErrDuplicate},
	{"unauthorized", ErrUnauthorized},
	{"validation", ErrValidation},
	{"idempotency_conflict", ErrIdempotencyConflict},
}

// ErrorKind names the category of err so it can cross a serialisation boundary such as a
// Temporal activity. It returns "" for uncategorised errors.
func ErrorKind(err error) string {
	for _, category := range categories {
		if errors.Is(err, category.err) {
			return category.kind
		}
	}
	return ""
}

// ErrorFromKind rebuilds a categorised error from ErrorKind output.
func ErrorFromKind(kind, message string) error {
	for _, category := range categories {
		if category.kind == kind {
			return fmt.Errorf("%w: %s", category.err, strings.TrimPrefix(message, category.err.Error()+": "))
		}
	}
	return errors.New(message)
}

func isPetMissing(err error) bool {
	return errors.Is(err, petports.ErrNotFound)
}

func wrap(category, reason error) error {
	return fmt.Errorf("%w: %w", category, reason)
}
