package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid pet input")
	// ErrForbidden signals the actor may not perform the operation.
	ErrForbidden = errors.New("operation requires admin role")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrInvalidSpecies) ||
		errors.Is(err, domain.ErrInvalidAge) ||
		errors.Is(err, domain.ErrInvalidAgeUnit) ||
		errors.Is(err, domain.ErrInvalidGender) ||
		errors.Is(err, domain.ErrInvalidSize) ||
		errors.Is(err, domain.ErrEmptyDescription) ||
		errors.Is(err, domain.ErrInvalidFee) ||
		errors.Is(err, domain.ErrMissingPoster) ||
		errors.Is(err, domain.ErrInvalidStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
