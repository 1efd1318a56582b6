package types

import "github.com/google/uuid"

// CreatePetInput captures the request to add a new pet into the catalog.
// ID is optional; callers that may retry supply one so the write stays idempotent.
type CreatePetInput struct {
	ID          uuid.UUID
	Name        string
	Species     string
	Breed       string
	Age         float64
	Gender      string
	Description string
	ImageURL    string
	Status      *string
	AddedBy     uuid.UUID
}

// UpdatePetInput carries a partial update. Nil fields are left untouched.
type UpdatePetInput struct {
	ID          uuid.UUID
	Name        *string
	Species     *string
	Breed       *string
	Age         *float64
	Gender      *string
	Description *string
	ImageURL    *string
	Status      *string
}

// PetIdentifier addresses a single pet.
type PetIdentifier struct {
	ID uuid.UUID
}
