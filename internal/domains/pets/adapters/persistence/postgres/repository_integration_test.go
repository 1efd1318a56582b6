//go:build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/postgres/pgtest"
)

func newPet(t *testing.T, name, species, breed string, age float64) *domain.Pet {
	t.Helper()
	pet, err := domain.NewPet(uuid.New(), domain.Profile{
		Name:        name,
		Species:     species,
		Breed:       breed,
		Age:         age,
		Gender:      domain.GenderFemale,
		Description: "Integration fixture",
	}, "", uuid.Nil)
	require.NoError(t, err)
	return pet
}

func TestPostgresRepository_SaveAndGetByID(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	pet := newPet(t, "Buddy", "Dog", "Golden Retriever", 2)
	pet.AddedBy = uuid.New()
	saved, err := repo.Save(ctx, pet)
	require.NoError(t, err)
	assert.False(t, saved.Metadata.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, pet.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buddy", got.Entity.Name)
	assert.Equal(t, domain.StatusAvailable, got.Entity.Status)
	assert.Equal(t, pet.AddedBy, got.Entity.AddedBy)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresRepository_UpdateKeepsCreatedAt(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	pet := newPet(t, "Original", "Dog", "Beagle", 1)
	saved, err := repo.Save(ctx, pet)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, pet.Rename("Renamed"))
	require.NoError(t, pet.UpdateStatus(domain.StatusPending))
	updated, err := repo.Save(ctx, pet)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Entity.Name)
	assert.Equal(t, domain.StatusPending, updated.Entity.Status)
	assert.Equal(t, saved.Metadata.CreatedAt.Unix(), updated.Metadata.CreatedAt.Unix())
	assert.True(t, updated.Metadata.UpdatedAt.After(saved.Metadata.CreatedAt))
}

func TestPostgresRepository_CreateLeavesExistingRow(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	pet := newPet(t, "Buddy", "Dog", "Golden Retriever", 2)
	created, err := repo.Create(ctx, pet)
	require.NoError(t, err)
	require.NoError(t, pet.MarkAdopted())
	_, err = repo.Save(ctx, pet)
	require.NoError(t, err)

	replay := newPet(t, "Impostor", "Cat", "Siamese", 1)
	replay.ID = pet.ID
	got, err := repo.Create(ctx, replay)
	require.NoError(t, err)
	assert.Equal(t, "Buddy", got.Entity.Name)
	assert.Equal(t, domain.StatusAdopted, got.Entity.Status)
	assert.Equal(t, created.Metadata.CreatedAt.Unix(), got.Metadata.CreatedAt.Unix())
}

func TestPostgresRepository_ListFilters(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	fixtures := []*domain.Pet{
		newPet(t, "Buddy", "Dog", "Golden Retriever", 0.5),
		newPet(t, "Max", "Dog", "Labrador", 4),
		newPet(t, "Whiskers", "Cat", "Maine Coon", 8),
		newPet(t, "100% Pure", "Cat", "Siamese", 2),
	}
	for _, pet := range fixtures {
		_, err := repo.Save(ctx, pet)
		require.NoError(t, err)
	}
	pending := newPet(t, "Shadow", "Dog", "Labrador", 3)
	require.NoError(t, pending.UpdateStatus(domain.StatusPending))
	_, err := repo.Save(ctx, pending)
	require.NoError(t, err)

	available := []domain.Status{domain.StatusAvailable}
	cases := []struct {
		name  string
		query ports.ListQuery
		want  []string
	}{
		{"newest first", ports.ListQuery{Statuses: available}, []string{"100% Pure", "Whiskers", "Max", "Buddy"}},
		{"species exact", ports.ListQuery{Species: "Dog", Statuses: available}, []string{"Max", "Buddy"}},
		{"species case sensitive", ports.ListQuery{Species: "dog", Statuses: available}, []string{}},
		{"breed substring", ports.ListQuery{Breed: "retr", Statuses: available}, []string{"Buddy"}},
		{"search name or breed", ports.ListQuery{Search: "LAB", Statuses: available}, []string{"Max"}},
		{"wildcards are literal", ports.ListQuery{Search: "%", Statuses: available}, []string{"100% Pure"}},
		{"age bucket", ports.ListQuery{Age: ageBucket(t, 3), Statuses: available}, []string{"Max"}},
		{"open bucket", ports.ListQuery{Age: ageBucket(t, 7), Statuses: available}, []string{"Whiskers"}},
		{"statuses", ports.ListQuery{Breed: "Labrador", Statuses: []domain.Status{domain.StatusAvailable, domain.StatusPending}}, []string{"Shadow", "Max"}},
		{"paged", ports.ListQuery{Statuses: available, Offset: 1, Limit: 2}, []string{"Whiskers", "Max"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, _, err := repo.List(ctx, tc.query)
			require.NoError(t, err)
			names := make([]string, 0, len(items))
			for _, item := range items {
				names = append(names, item.Entity.Name)
			}
			assert.Equal(t, tc.want, names)
		})
	}

	_, total, err := repo.List(ctx, ports.ListQuery{Statuses: available, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
}

func TestPostgresRepository_Delete(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	pet := newPet(t, "ToDelete", "Dog", "Pug", 1)
	_, err := repo.Save(ctx, pet)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, pet.ID))
	_, err = repo.GetByID(ctx, pet.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, pet.ID), ports.ErrNotFound)
}

func ageBucket(t *testing.T, lower int) *domain.AgeBucket {
	t.Helper()
	bucket, err := domain.ParseAgeBucket(lower)
	require.NoError(t, err)
	return &bucket
}
