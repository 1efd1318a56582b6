package adoptionserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	adoptionhttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/http/mapper"
	adoptionstypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	adoptionsports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
)

// AdoptionAPI exposes the adoption application workflow over HTTP.
type AdoptionAPI struct {
	service adoptionsports.Service
}

// NewAdoptionAPI creates an AdoptionAPI backed by the provided service.
func NewAdoptionAPI(service adoptionsports.Service) AdoptionAPI {
	return AdoptionAPI{service: service}
}

// Post /api/adoptions
// Apply to adopt a pet
func (api *AdoptionAPI) Submit(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		respondUnauthorized(c, auth.ErrMissingToken)
		return
	}
	var payload adoptionhttpmapper.SubmitApplication
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, err)
		return
	}
	view, err := api.service.Submit(c.Request.Context(), adoptionhttpmapper.ToSubmitInput(payload, identity.UserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, adoptionhttpmapper.FromView(view))
}

// Get /api/adoptions/my-applications
// Lists the caller's applications, newest first
func (api *AdoptionAPI) ListMine(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		respondUnauthorized(c, auth.ErrMissingToken)
		return
	}
	views, err := api.service.ListForApplicant(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromViews(views))
}

// Get /api/adoptions
// Lists every application, newest first
func (api *AdoptionAPI) ListAll(c *gin.Context) {
	views, err := api.service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromViews(views))
}

// Get /api/pets/:petId/adoptions
// Lists the applications filed against one pet
func (api *AdoptionAPI) ListForPet(c *gin.Context) {
	petID, ok := parseUUIDParam(c, "petId")
	if !ok {
		return
	}
	views, err := api.service.ListForPet(c.Request.Context(), petID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromViews(views))
}

// Put /api/adoptions/:applicationId/approve
// Approves an application, adopting the pet and rejecting its other pending applications
func (api *AdoptionAPI) Approve(c *gin.Context) {
	api.decide(c, api.service.Approve)
}

// Put /api/adoptions/:applicationId/reject
// Rejects a pending application
func (api *AdoptionAPI) Reject(c *gin.Context) {
	api.decide(c, api.service.Reject)
}

type decision func(ctx context.Context, input adoptionstypes.ApplicationIdentifier) (*adoptionstypes.ApplicationView, error)

func (api *AdoptionAPI) decide(c *gin.Context, fn decision) {
	id, ok := parseUUIDParam(c, "applicationId")
	if !ok {
		return
	}
	view, err := fn(c.Request.Context(), adoptionstypes.ApplicationIdentifier{ID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromView(view))
}
