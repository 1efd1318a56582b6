package mapper

import (
	"time"

	"github.com/google/uuid"

	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
)

// CreatePet is the inbound payload for POST /api/pets.
type CreatePet struct {
	Name        string   `json:"name" binding:"required"`
	Species     string   `json:"species" binding:"required"`
	Breed       string   `json:"breed" binding:"required"`
	Age         *float64 `json:"age" binding:"required,gte=0"`
	Gender      string   `json:"gender" binding:"required,oneof=Male Female Unknown"`
	Description string   `json:"description" binding:"required"`
	ImageURL    string   `json:"imageUrl"`
	Status      *string  `json:"status" binding:"omitempty,oneof=available pending adopted"`
}

// UpdatePet is the inbound payload for PUT /api/pets/:petId. Absent fields are left untouched.
type UpdatePet struct {
	Name        *string  `json:"name" binding:"omitempty,min=1"`
	Species     *string  `json:"species" binding:"omitempty,min=1"`
	Breed       *string  `json:"breed" binding:"omitempty,min=1"`
	Age         *float64 `json:"age" binding:"omitempty,gte=0"`
	Gender      *string  `json:"gender" binding:"omitempty,oneof=Male Female Unknown"`
	Description *string  `json:"description" binding:"omitempty,min=1"`
	ImageURL    *string  `json:"imageUrl"`
	Status      *string  `json:"status" binding:"omitempty,oneof=available pending adopted"`
}

// Owner identifies the administrator who listed a pet.
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Pet is the HTTP representation of a catalog entry.
type Pet struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed"`
	Age         float64   `json:"age"`
	Gender      string    `json:"gender"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Status      string    `json:"status"`
	AddedBy     *Owner    `json:"addedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PetSummary is the compact pet view embedded in adoption applications.
type PetSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Species  string  `json:"species"`
	Breed    string  `json:"breed"`
	Age      float64 `json:"age"`
	ImageURL string  `json:"imageUrl"`
	Status   string  `json:"status"`
}

// PetPage is the paginated listing response.
type PetPage struct {
	Pets        []Pet `json:"pets"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalPets   int64 `json:"totalPets"`
}

// ToCreateInput maps the transport payload into the application command.
func ToCreateInput(payload CreatePet, addedBy uuid.UUID) petstypes.CreatePetInput {
	input := petstypes.CreatePetInput{
		Name:        payload.Name,
		Species:     payload.Species,
		Breed:       payload.Breed,
		Gender:      payload.Gender,
		Description: payload.Description,
		ImageURL:    payload.ImageURL,
		Status:      payload.Status,
		AddedBy:     addedBy,
	}
	if payload.Age != nil {
		input.Age = *payload.Age
	}
	return input
}

// ToUpdateInput maps the transport payload into a partial update command.
func ToUpdateInput(id uuid.UUID, payload UpdatePet) petstypes.UpdatePetInput {
	return petstypes.UpdatePetInput{
		ID:          id,
		Name:        payload.Name,
		Species:     payload.Species,
		Breed:       payload.Breed,
		Age:         payload.Age,
		Gender:      payload.Gender,
		Description: payload.Description,
		ImageURL:    payload.ImageURL,
		Status:      payload.Status,
	}
}

// FromProjection maps a projection into the HTTP representation.
func FromProjection(p *petstypes.PetProjection) Pet {
	if p == nil || p.Entity == nil {
		return Pet{}
	}
	pet := p.Entity
	out := Pet{
		ID:          pet.ID.String(),
		Name:        pet.Name,
		Species:     pet.Species,
		Breed:       pet.Breed,
		Age:         pet.Age,
		Gender:      string(pet.Gender),
		Description: pet.Description,
		ImageURL:    pet.ImageURL,
		Status:      string(pet.Status),
		CreatedAt:   p.Metadata.CreatedAt,
		UpdatedAt:   p.Metadata.UpdatedAt,
	}
	if pet.AddedBy != uuid.Nil {
		out.AddedBy = &Owner{ID: pet.AddedBy.String()}
	}
	return out
}

// FromPage maps a page of projections into the listing response.
func FromPage(page *petstypes.PetPage) PetPage {
	out := PetPage{Pets: make([]Pet, 0)}
	if page == nil {
		return out
	}
	for _, item := range page.Items {
		out.Pets = append(out.Pets, FromProjection(item))
	}
	out.CurrentPage = page.Page
	out.TotalPages = page.TotalPages()
	out.TotalPets = page.Total
	return out
}

// ToSummary maps a projection into the embedded summary, nil when the pet is gone.
func ToSummary(p *petstypes.PetProjection) *PetSummary {
	if p == nil || p.Entity == nil {
		return nil
	}
	pet := p.Entity
	return &PetSummary{
		ID:       pet.ID.String(),
		Name:     pet.Name,
		Species:  pet.Species,
		Breed:    pet.Breed,
		Age:      pet.Age,
		ImageURL: pet.ImageURL,
		Status:   string(pet.Status),
	}
}
