package adoptionserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	pethttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/http/mapper"
	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

// OwnerDirectory resolves the administrators referenced by pets.
type OwnerDirectory interface {
	Lookup(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*userdomain.User, error)
}

// PetAPI wires HTTP transport with the pets bounded context service and workflows.
type PetAPI struct {
	service   petsports.Service
	workflows petsports.WorkflowOrchestrator
	owners    OwnerDirectory
}

// NewPetAPI creates a PetAPI backed by the provided service. owners may be nil.
func NewPetAPI(service petsports.Service, workflows petsports.WorkflowOrchestrator, owners OwnerDirectory) PetAPI {
	return PetAPI{service: service, workflows: workflows, owners: owners}
}

// Get /api/pets
// Lists the catalogue with filters and pagination
func (api *PetAPI) ListPets(c *gin.Context) {
	input, err := bindListPetsQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := api.service.ListPets(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	out := pethttpmapper.FromPage(page)
	owners := api.lookupOwners(c.Request.Context(), page.Items...)
	for i := range out.Pets {
		attachOwner(&out.Pets[i], owners)
	}
	c.JSON(http.StatusOK, out)
}

// Get /api/pets/:petId
// Find pet by ID
func (api *PetAPI) GetPet(c *gin.Context) {
	id, ok := parseUUIDParam(c, "petId")
	if !ok {
		return
	}
	pet, err := api.service.GetPet(c.Request.Context(), petstypes.PetIdentifier{ID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	out := pethttpmapper.FromProjection(pet)
	attachOwner(&out, api.lookupOwners(c.Request.Context(), pet))
	c.JSON(http.StatusOK, out)
}

// Post /api/pets
// Add a new pet to the catalogue
func (api *PetAPI) CreatePet(c *gin.Context) {
	var payload pethttpmapper.CreatePet
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	identity, _ := currentIdentity(c)
	input := pethttpmapper.ToCreateInput(payload, identity.UserID)
	saved, err := api.createPet(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	out := pethttpmapper.FromProjection(saved)
	attachOwner(&out, api.lookupOwners(c.Request.Context(), saved))
	c.JSON(http.StatusCreated, out)
}

func (api *PetAPI) createPet(ctx context.Context, input petstypes.CreatePetInput) (*petstypes.PetProjection, error) {
	if api.workflows != nil {
		return api.workflows.CreatePet(ctx, input)
	}
	return api.service.CreatePet(ctx, input)
}

// Put /api/pets/:petId
// Update an existing pet
func (api *PetAPI) UpdatePet(c *gin.Context) {
	id, ok := parseUUIDParam(c, "petId")
	if !ok {
		return
	}
	var payload pethttpmapper.UpdatePet
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	updated, err := api.service.UpdatePet(c.Request.Context(), pethttpmapper.ToUpdateInput(id, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	out := pethttpmapper.FromProjection(updated)
	attachOwner(&out, api.lookupOwners(c.Request.Context(), updated))
	c.JSON(http.StatusOK, out)
}

// Delete /api/pets/:petId
// Deletes a pet and its applications
func (api *PetAPI) DeletePet(c *gin.Context) {
	id, ok := parseUUIDParam(c, "petId")
	if !ok {
		return
	}
	if err := api.service.DeletePet(c.Request.Context(), petstypes.PetIdentifier{ID: id}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pet removed"})
}

func bindListPetsQuery(c *gin.Context) (petstypes.ListPetsInput, error) {
	query := c.Request.URL.Query()
	input := petstypes.ListPetsInput{
		Species: strings.TrimSpace(query.Get("species")),
		Breed:   strings.TrimSpace(query.Get("breed")),
		Search:  strings.TrimSpace(query.Get("search")),
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &input.Page); err != nil {
		return input, paramError{name: "page", reason: "must be an integer"}
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &input.Limit); err != nil {
		return input, paramError{name: "limit", reason: "must be an integer"}
	}
	if query.Get("age") != "" {
		var age int
		if err := runtime.BindQueryParameter("form", true, false, "age", query, &age); err != nil {
			return input, paramError{name: "age", reason: "must be one of 0, 1, 3, 7"}
		}
		input.AgeBucket = &age
	}
	for _, raw := range query["status"] {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != "" {
				input.Statuses = append(input.Statuses, status)
			}
		}
	}
	return input, nil
}

func (api *PetAPI) lookupOwners(ctx context.Context, pets ...*petstypes.PetProjection) map[uuid.UUID]*userdomain.User {
	if api.owners == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(pets))
	for _, pet := range pets {
		if pet != nil && pet.Entity != nil && pet.Entity.AddedBy != uuid.Nil {
			ids = append(ids, pet.Entity.AddedBy)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	owners, err := api.owners.Lookup(ctx, ids)
	if err != nil {
		return nil
	}
	return owners
}

func attachOwner(pet *pethttpmapper.Pet, owners map[uuid.UUID]*userdomain.User) {
	if pet.AddedBy == nil || owners == nil {
		return
	}
	id, err := uuid.Parse(pet.AddedBy.ID)
	if err != nil {
		return
	}
	if owner, ok := owners[id]; ok {
		pet.AddedBy.Name = owner.Name
		pet.AddedBy.Email = owner.Email
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, paramError{name: name, reason: "must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}
