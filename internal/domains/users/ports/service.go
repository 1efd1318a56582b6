package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

// RememberInput describes an authenticated identity to record.
type RememberInput struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  string
}

// Service exposes user directory use cases to adapters.
type Service interface {
	Remember(ctx context.Context, input RememberInput) (*domain.User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Lookup(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error)
}
