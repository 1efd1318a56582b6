package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petactivities "github.com/Apurer/pet-adoption-api/internal/durable/temporal/activities/pets"
)

// RunPetPersistenceSequence executes the ordered set of activities needed to persist a pet aggregate.
func RunPetPersistenceSequence(ctx workflow.Context, input petstypes.CreatePetInput) (*petstypes.PetProjection, error) {
	logger := workflow.GetLogger(ctx)
	petID := input.ID.String()
	logger.Info("pet persistence sequence started", "petId", petID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{petactivities.InvalidInputErrorType},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var projection petstypes.PetProjection
	err := workflow.ExecuteActivity(ctx, petactivities.PersistPetActivityName, input).Get(ctx, &projection)
	if err != nil {
		logger.Error("pet persistence sequence failed", "petId", petID, "error", err)
		return nil, err
	}
	logger.Info("pet persistence sequence completed", "petId", petID)
	return &projection, nil
}
