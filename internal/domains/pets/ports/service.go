package ports

import (
	"context"

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
)

// Service defines the pets use cases exposed to adapters (inbound/driving port).
type Service interface {
	CreatePet(ctx context.Context, input pettypes.CreatePetInput) (*pettypes.PetProjection, error)
	UpdatePet(ctx context.Context, input pettypes.UpdatePetInput) (*pettypes.PetProjection, error)
	DeletePet(ctx context.Context, input pettypes.PetIdentifier) error
	GetPet(ctx context.Context, input pettypes.PetIdentifier) (*pettypes.PetProjection, error)
	ListPets(ctx context.Context, input pettypes.ListPetsInput) (*pettypes.PetPage, error)
}
