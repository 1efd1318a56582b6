package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	// Save inserts or replaces the profile keyed by ID.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// GetMany returns the profiles that exist among ids; missing ids are absent.
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error)
}
