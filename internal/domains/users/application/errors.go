package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid user input")
	// ErrAuthentication wraps authentication failures.
	ErrAuthentication = errors.New("authentication failed")
	// ErrForbidden is returned when the caller may not touch the account.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when the email is already registered.
	ErrConflict = errors.New("user conflict")
)

var (
	errInvalidCredentials = errors.New("invalid email or password")
	errSessionExpired     = errors.New("session expired")
	errNotSelf            = errors.New("only the account owner or an admin may do this")
	errAdminOnly          = errors.New("admin role required")
	errNotAuthenticated   = errors.New("not authenticated")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrEmptyEmail),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrWeakPassword):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrEmailTaken):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, ports.ErrInvalidToken),
		errors.Is(err, ports.ErrSessionNotFound):
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	return err
}
