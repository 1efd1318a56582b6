package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid pet input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrEmptySpecies) ||
		errors.Is(err, domain.ErrEmptyBreed) ||
		errors.Is(err, domain.ErrEmptyDescription) ||
		errors.Is(err, domain.ErrInvalidAge) ||
		errors.Is(err, domain.ErrInvalidGender) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrAdoptionRequired) ||
		errors.Is(err, domain.ErrAlreadyAdopted) ||
		errors.Is(err, domain.ErrInvalidAgeBucket) ||
		errors.Is(err, domain.ErrMissingIdentifier) ||
		errors.Is(err, errInvalidPage) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
