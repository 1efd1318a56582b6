package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/pet-adoption-api/internal/platform/accesscontrol"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Access guards the route when set. Nil routes are public.
	Access *Access
}

// Access names the RBAC object and action a protected route requires.
type Access struct {
	Object accesscontrol.Object
	Action accesscontrol.Action
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	useJSONFieldNames()
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := make([]gin.HandlerFunc, 0, 3)
		if route.Access != nil {
			handlers = append(handlers,
				handleFunctions.Security.Authenticate(),
				handleFunctions.Security.Authorize(route.Access.Object, route.Access.Action),
			)
		}
		handlers = append(handlers, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc is the default handler for not yet implemented routes.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions bundles the handlers mounted by the router.
type ApiHandleFunctions struct {
	PetAPI      PetAPI
	AdoptionAPI AdoptionAPI
	HealthAPI   HealthAPI
	Security    *Security
}

func protect(obj accesscontrol.Object, act accesscontrol.Action) *Access {
	return &Access{Object: obj, Action: act}
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"ListPets",
			http.MethodGet,
			"/api/pets",
			handleFunctions.PetAPI.ListPets,
			nil,
		},
		{
			"GetPet",
			http.MethodGet,
			"/api/pets/:petId",
			handleFunctions.PetAPI.GetPet,
			nil,
		},
		{
			"CreatePet",
			http.MethodPost,
			"/api/pets",
			handleFunctions.PetAPI.CreatePet,
			protect(accesscontrol.ObjectPets, accesscontrol.ActionCreate),
		},
		{
			"UpdatePet",
			http.MethodPut,
			"/api/pets/:petId",
			handleFunctions.PetAPI.UpdatePet,
			protect(accesscontrol.ObjectPets, accesscontrol.ActionUpdate),
		},
		{
			"DeletePet",
			http.MethodDelete,
			"/api/pets/:petId",
			handleFunctions.PetAPI.DeletePet,
			protect(accesscontrol.ObjectPets, accesscontrol.ActionDelete),
		},
		{
			"ListPetApplications",
			http.MethodGet,
			"/api/pets/:petId/adoptions",
			handleFunctions.AdoptionAPI.ListForPet,
			protect(accesscontrol.ObjectAdoptions, accesscontrol.ActionReadAll),
		},
		{
			"SubmitApplication",
			http.MethodPost,
			"/api/adoptions",
			handleFunctions.AdoptionAPI.Submit,
			protect(accesscontrol.ObjectAdoptions, accesscontrol.ActionSubmit),
		},
		{
			"ListMyApplications",
			http.MethodGet,
			"/api/adoptions/my-applications",
			handleFunctions.AdoptionAPI.ListMine,
			protect(accesscontrol.ObjectAdoptions, accesscontrol.ActionReadOwn),
		},
		{
			"ListApplications",
			http.MethodGet,
			"/api/adoptions",
			handleFunctions.AdoptionAPI.ListAll,
			protect(accesscontrol.ObjectAdoptions, accesscontrol.ActionReadAll),
		},
		{
			"ApproveApplication",
			http.MethodPut,
			"/api/adoptions/:applicationId/approve",
			handleFunctions.AdoptionAPI.Approve,
			protect(accesscontrol.ObjectAdoptions, accesscontrol.ActionDecide),
		},
		{
			"RejectApplication",
			http.MethodPut,
			"/api/adoptions/:applicationId/reject",
			handleFunctions.AdoptionAPI.Reject,
			protect(accesscontrol.ObjectAdoptions, accesscontrol.ActionDecide),
		},
		{
			"Healthz",
			http.MethodGet,
			"/healthz",
			handleFunctions.HealthAPI.Healthz,
			nil,
		},
		{
			"Metrics",
			http.MethodGet,
			"/metrics",
			handleFunctions.HealthAPI.Metrics,
			nil,
		},
	}
}
