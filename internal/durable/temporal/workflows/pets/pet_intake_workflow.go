package pets

import (
	"go.temporal.io/sdk/workflow"

	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/durable/temporal/sequences"
)

const (
	// PetIntakeWorkflowName is the public identifier for registering the workflow.
	PetIntakeWorkflowName = "pets.workflows.Intake"
	// PetIntakeTaskQueue is the queue consumed by the worker processing pet workflows.
	PetIntakeTaskQueue = "PET_INTAKE"
)

// PetIntakeWorkflowInput captures the payload required to list a new pet.
type PetIntakeWorkflowInput struct {
	Command petstypes.CreatePetInput
	TraceID string
}

// PetIntakeWorkflow orchestrates the activities needed to add a pet to the catalog.
func PetIntakeWorkflow(ctx workflow.Context, input PetIntakeWorkflowInput) (*petstypes.PetProjection, error) {
	logger := workflow.GetLogger(ctx)
	petID := input.Command.ID.String()
	logger.Info("PetIntakeWorkflow started", withTraceID(input.TraceID, "petId", petID)...)
	projection, err := sequences.RunPetPersistenceSequence(ctx, input.Command)
	if err != nil {
		logger.Error("PetIntakeWorkflow failed", withTraceID(input.TraceID, "petId", petID, "error", err)...)
		return nil, err
	}
	logger.Info("PetIntakeWorkflow completed", withTraceID(input.TraceID, "petId", petID)...)
	return projection, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
