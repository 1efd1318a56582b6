package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	petsmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	"github.com/Apurer/pet-adoption-api/internal/platform/memstore"
)

func TestRunIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	pets := petsapp.NewService(petsmemory.NewRepository(store), nil)
	users := userapp.NewService(usermemory.NewRepository(store))

	n, err := Run(ctx, pets, users)
	require.NoError(t, err)
	assert.Equal(t, len(samplePets), n)
	_, err = Run(ctx, pets, users)
	require.NoError(t, err)

	page, err := pets.ListPets(ctx, petstypes.ListPetsInput{Limit: 100})
	require.NoError(t, err)
	assert.EqualValues(t, len(samplePets), page.Total)

	buddy, err := pets.GetPet(ctx, petstypes.PetIdentifier{ID: PetID("Buddy")})
	require.NoError(t, err)
	assert.Equal(t, Admin.UserID, buddy.Entity.AddedBy)

	admin, err := users.GetProfile(ctx, Admin.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Admin User", admin.Name)
}
