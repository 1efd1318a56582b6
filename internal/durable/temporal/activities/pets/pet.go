package pets

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

const (
	// PersistPetActivityName persists a new catalog entry.
	PersistPetActivityName = "pets.activities.PersistPet"
	// InvalidInputErrorType marks failures that retrying cannot fix.
	InvalidInputErrorType = "pets.InvalidInput"
)

// Activities groups activities that operate on the pets bounded context.
type Activities struct {
	service petsports.Service
}

// NewActivities wires the pets service into the Temporal activities bundle.
func NewActivities(service petsports.Service) *Activities {
	return &Activities{service: service}
}

// PersistPet stores a new pet aggregate and returns its projection. The input
// carries a pre-assigned ID so retried attempts upsert the same row.
func (a *Activities) PersistPet(ctx context.Context, input petstypes.CreatePetInput) (*petstypes.PetProjection, error) {
	logger := activity.GetLogger(ctx)
	petID := input.ID.String()
	if a == nil || a.service == nil {
		logger.Error("pet persist activity not initialized", "petId", petID)
		return nil, errors.New("pet persist activity not initialized")
	}
	logger.Info("PersistPet activity started", "petId", petID)
	projection, err := a.service.CreatePet(ctx, input)
	if err != nil {
		logger.Error("PersistPet activity failed", "petId", petID, "error", err)
		if errors.Is(err, petsapp.ErrInvalidInput) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), InvalidInputErrorType, err)
		}
		return nil, err
	}
	logger.Info("PersistPet activity completed", "petId", petID)
	return projection, nil
}
