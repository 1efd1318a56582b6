//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/postgres/pgtest"
)

func TestPostgresUserRepository_SaveUpserts(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	id := uuid.New()
	user, err := domain.NewUser(id, "Alice", "alice@example.test", domain.RoleUser)
	require.NoError(t, err)
	_, err = repo.Save(ctx, user)
	require.NoError(t, err)

	require.NoError(t, user.SetName("Alice Liddell"))
	require.NoError(t, user.SetRole(domain.RoleAdmin))
	_, err = repo.Save(ctx, user)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", got.Name)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresUserRepository_GetMany(t *testing.T) {
	repo := NewRepository(pgtest.Start(t))
	ctx := context.Background()

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	for i, name := range []string{"Alice", "Bob"} {
		user, err := domain.NewUser(ids[i], name, "", "")
		require.NoError(t, err)
		_, err = repo.Save(ctx, user)
		require.NoError(t, err)
	}

	found, err := repo.GetMany(ctx, append(ids, uuid.New()))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Bob", found[ids[1]].Name)

	empty, err := repo.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
