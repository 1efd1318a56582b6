//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adoptionspostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptionsapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	petspostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	userpostgres "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/postgres/pgtest"
)

type services struct {
	adoptions *adoptionsapp.Service
	pets      *petsapp.Service
	users     *userapp.Service
}

func setup(t *testing.T) services {
	t.Helper()
	db := pgtest.Start(t)
	petRepo := petspostgres.NewRepository(db)
	tx := adoptionspostgres.NewTransactor(db)
	users := userapp.NewService(userpostgres.NewRepository(db))
	return services{
		adoptions: adoptionsapp.NewService(adoptionspostgres.NewRepository(db), petRepo, tx, adoptionsapp.WithApplicantDirectory(users)),
		pets:      petsapp.NewService(petRepo, tx.ForPets(), petsapp.WithDefaultStatus()),
		users:     users,
	}
}

func (s services) pet(t *testing.T, name string) uuid.UUID {
	t.Helper()
	pet, err := s.pets.CreatePet(context.Background(), petstypes.CreatePetInput{
		Name: name, Species: "Dog", Breed: "Beagle", Age: 2, Gender: "Male", Description: "Fixture",
	})
	require.NoError(t, err)
	return pet.Entity.ID
}

func (s services) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := s.users.Remember(context.Background(), userports.RememberInput{ID: id, Name: name})
	require.NoError(t, err)
	return id
}

func TestApproveAdoptsPetAndRejectsSiblings(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	petID := s.pet(t, "Buddy")
	alice, bob := s.user(t, "Alice"), s.user(t, "Bob")

	first, err := s.adoptions.Submit(ctx, types.SubmitInput{PetID: petID, ApplicantID: alice, Message: "garden"})
	require.NoError(t, err)
	second, err := s.adoptions.Submit(ctx, types.SubmitInput{PetID: petID, ApplicantID: bob})
	require.NoError(t, err)
	assert.Equal(t, "Alice", first.Applicant.Name)

	approved, err := s.adoptions.Approve(ctx, types.ApplicationIdentifier{ID: first.Application.Entity.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Application.Entity.Status)
	assert.Equal(t, petdomain.StatusAdopted, approved.Pet.Entity.Status)

	forPet, err := s.adoptions.ListForPet(ctx, petID)
	require.NoError(t, err)
	statuses := map[uuid.UUID]domain.Status{}
	for _, view := range forPet {
		statuses[view.Application.Entity.ID] = view.Application.Entity.Status
	}
	assert.Equal(t, domain.StatusRejected, statuses[second.Application.Entity.ID])

	_, err = s.adoptions.Approve(ctx, types.ApplicationIdentifier{ID: second.Application.Entity.ID})
	assert.ErrorIs(t, err, adoptionsapp.ErrInvalidState)
}

func TestDuplicateSubmissionIsConflict(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	petID := s.pet(t, "Luna")
	alice := s.user(t, "Alice")

	_, err := s.adoptions.Submit(ctx, types.SubmitInput{PetID: petID, ApplicantID: alice})
	require.NoError(t, err)
	_, err = s.adoptions.Submit(ctx, types.SubmitInput{PetID: petID, ApplicantID: alice})
	assert.ErrorIs(t, err, adoptionsapp.ErrConflict)
}

func TestConcurrentApprovalsHaveOneWinner(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	petID := s.pet(t, "Max")

	var ids []uuid.UUID
	for _, name := range []string{"A", "B", "C", "D"} {
		view, err := s.adoptions.Submit(ctx, types.SubmitInput{PetID: petID, ApplicantID: s.user(t, name)})
		require.NoError(t, err)
		ids = append(ids, view.Application.Entity.ID)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := s.adoptions.Approve(ctx, types.ApplicationIdentifier{ID: id}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	views, err := s.adoptions.ListForPet(ctx, petID)
	require.NoError(t, err)
	approved := 0
	for _, view := range views {
		if view.Application.Entity.Status == domain.StatusApproved {
			approved++
		}
	}
	assert.Equal(t, 1, approved)
}

func TestDeletePetCascadesApplications(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	petID := s.pet(t, "Rocky")
	alice := s.user(t, "Alice")
	_, err := s.adoptions.Submit(ctx, types.SubmitInput{PetID: petID, ApplicantID: alice})
	require.NoError(t, err)

	require.NoError(t, s.pets.DeletePet(ctx, petstypes.PetIdentifier{ID: petID}))

	mine, err := s.adoptions.ListForApplicant(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
