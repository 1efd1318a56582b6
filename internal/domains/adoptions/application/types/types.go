package types

import (
	"github.com/google/uuid"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// ApplicationProjection carries an application with its persistence metadata.
type ApplicationProjection = projection.Projection[*domain.Application]

// SubmitInput is an applicant's request to adopt a pet.
type SubmitInput struct {
	PetID       uuid.UUID
	ApplicantID uuid.UUID
	Message     string
}

// ApplicationIdentifier addresses a single application.
type ApplicationIdentifier struct {
	ID uuid.UUID
}

// ApplicationView is an application enriched with summaries of the pet and
// the applicant. Pet or Applicant is nil when the referenced record is gone.
type ApplicationView struct {
	Application *ApplicationProjection
	Pet         *petstypes.PetProjection
	Applicant   *userdomain.User
}

// CloneProjection duplicates a projection including the aggregate.
func CloneProjection(src *ApplicationProjection) *ApplicationProjection {
	if src == nil {
		return nil
	}
	return &ApplicationProjection{Entity: src.Entity.Clone(), Metadata: src.Metadata}
}
