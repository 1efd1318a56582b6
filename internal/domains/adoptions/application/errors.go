package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid adoption input")
	// ErrInvalidState signals the pet or application is not in a state that allows the operation.
	ErrInvalidState = errors.New("invalid adoption state")
	// ErrConflict signals the applicant already applied for the pet.
	ErrConflict = errors.New("adoption application conflict")
)

var errPetUnavailable = errors.New("pet is not available for adoption")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrMissingIdentifier),
		errors.Is(err, domain.ErrMissingPet),
		errors.Is(err, domain.ErrMissingApplicant),
		errors.Is(err, domain.ErrMessageTooLong):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, petdomain.ErrNotAdoptable),
		errors.Is(err, errPetUnavailable):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	case errors.Is(err, ports.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
