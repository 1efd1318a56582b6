package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

// Service exposes the user directory use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// Remember records the latest profile for an authenticated identity.
func (s *Service) Remember(ctx context.Context, input ports.RememberInput) (*domain.User, error) {
	user, err := domain.NewUser(input.ID, input.Name, input.Email, domain.Role(input.Role))
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// Lookup resolves many ids at once. Unknown ids are omitted from the result.
func (s *Service) Lookup(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	users, err := s.repo.GetMany(ctx, dedupe(ids))
	if err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ ports.Service = (*Service)(nil)
