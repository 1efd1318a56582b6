package ports

import (
	"context"

	"github.com/google/uuid"

	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
)

// Service exposes adoption workflow use cases to adapters.
type Service interface {
	Submit(ctx context.Context, input types.SubmitInput) (*types.ApplicationView, error)
	ListForApplicant(ctx context.Context, applicantID uuid.UUID) ([]*types.ApplicationView, error)
	ListAll(ctx context.Context) ([]*types.ApplicationView, error)
	ListForPet(ctx context.Context, petID uuid.UUID) ([]*types.ApplicationView, error)
	Approve(ctx context.Context, input types.ApplicationIdentifier) (*types.ApplicationView, error)
	Reject(ctx context.Context, input types.ApplicationIdentifier) (*types.ApplicationView, error)
}

// ApplicantDirectory resolves applicant profiles for application views.
type ApplicantDirectory interface {
	Lookup(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*userdomain.User, error)
}
