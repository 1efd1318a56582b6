//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pacttest "github.com/Apurer/pet-adoption-api/test/pact"

	"github.com/Apurer/pet-adoption-api/internal/app/api"
	adoptiondomain "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestAdoptionAPIProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StatePetsBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedPet(t)
			}
			return nil, nil
		},
		pacttest.StatePetExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedPet(t)
			}
			return nil, nil
		},
		pacttest.StatePetMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateApplicationExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedPet(t)
				app.seedApplication(t)
			}
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		RequestFilter:   app.swapTokens,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp serves the real router over a fresh in-memory backend
// that every provider state rebuilds.
type contractProviderApp struct {
	mu       sync.RWMutex
	backend  *api.Backend
	services api.Services
	handler  http.Handler

	tokens map[string]string
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	verifier, err := auth.NewVerifier(pacttest.JWTSecret)
	require.NoError(t, err)
	app := &contractProviderApp{tokens: map[string]string{}}
	for placeholder, identity := range map[string]auth.Identity{
		pacttest.AdminToken:   adminIdentity,
		pacttest.AdopterToken: adopterIdentity,
	} {
		token, err := verifier.Issue(identity, time.Hour)
		require.NoError(t, err)
		app.tokens[placeholder] = "Bearer " + token
	}

	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		handler := app.handler
		app.mu.RUnlock()
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

var (
	adminIdentity = auth.Identity{
		UserID: pacttest.AdminID,
		Role:   auth.RoleAdmin,
		Name:   "Pact Admin",
		Email:  "pact.admin@example.com",
	}
	adopterIdentity = auth.Identity{
		UserID: pacttest.AdopterID,
		Role:   auth.RoleUser,
		Name:   "Pact Adopter",
		Email:  "pact.adopter@example.com",
	}
)

// swapTokens replaces the placeholder bearer tokens recorded in the pact with
// tokens signed by the provider's secret.
func (a *contractProviderApp) swapTokens(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if signed, ok := a.tokens[r.Header.Get("Authorization")]; ok {
			r.Header.Set("Authorization", signed)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	cfg := api.Config{
		JWTSecret:       pacttest.JWTSecret,
		DefaultPageSize: 12,
		MaxPageSize:     1000,
	}
	backend := api.NewMemoryBackend()
	services, err := api.NewServices(cfg, backend, nil)
	require.NoError(t, err)
	router, err := api.NewRouter(cfg, slog.Default(), backend, services)
	require.NoError(t, err)

	ctx := context.Background()
	for _, identity := range []auth.Identity{adminIdentity, adopterIdentity} {
		_, err := services.Users.Remember(ctx, userports.RememberInput{
			ID:    identity.UserID,
			Name:  identity.Name,
			Email: identity.Email,
			Role:  identity.Role,
		})
		require.NoError(t, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.backend = backend
	a.services = services
	a.handler = router
}

func (a *contractProviderApp) seedPet(t testing.TB) {
	t.Helper()
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, err := a.services.Pets.CreatePet(context.Background(), petstypes.CreatePetInput{
		ID:          pacttest.ExistingPetID,
		Name:        pacttest.ExamplePetName,
		Species:     pacttest.ExampleSpecies,
		Breed:       pacttest.ExampleBreed,
		Age:         pacttest.ExampleAge,
		Gender:      pacttest.ExampleGender,
		Description: pacttest.ExampleDescription,
		ImageURL:    pacttest.ExampleImageURL,
		AddedBy:     pacttest.AdminID,
	})
	require.NoError(t, err)
}

func (a *contractProviderApp) seedApplication(t testing.TB) {
	t.Helper()
	a.mu.RLock()
	defer a.mu.RUnlock()
	application, err := adoptiondomain.NewApplication(
		pacttest.ApplicationID,
		pacttest.ExistingPetID,
		pacttest.AdopterID,
		pacttest.ExampleMessage,
		time.Now().UTC(),
	)
	require.NoError(t, err)
	_, err = a.backend.Applications.Create(context.Background(), application)
	require.NoError(t, err)
}
