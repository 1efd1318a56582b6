package memory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/memstore"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps user profiles in memory.
type Repository struct {
	store *memstore.Store
	users *memstore.Table[*domain.User]
}

// NewRepository registers a users table on store.
func NewRepository(store *memstore.Store) *Repository {
	return &Repository{
		store: store,
		users: memstore.NewTable(store, cloneUser),
	}
}

func (r *Repository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	_ = r.store.Update(func() error {
		r.users.Put(user.ID, user)
		return nil
	})
	return cloneUser(user), nil
}

func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	var (
		user *domain.User
		ok   bool
	)
	r.store.View(func() { user, ok = r.users.Get(id) })
	if !ok {
		return nil, ports.ErrNotFound
	}
	return user, nil
}

func (r *Repository) GetMany(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	out := make(map[uuid.UUID]*domain.User, len(ids))
	r.store.View(func() {
		for _, id := range ids {
			if user, ok := r.users.Get(id); ok {
				out[id] = user
			}
		}
	})
	return out, nil
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}
