package types

import (
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// PetProjection transports a domain aggregate together with its persistence metadata.
type PetProjection = projection.Projection[*domain.Pet]

// PetPage is one page of a pet listing.
type PetPage = projection.Page[*PetProjection]

// CloneProjection duplicates a projection including the aggregate.
func CloneProjection(src *PetProjection) *PetProjection {
	if src == nil {
		return nil
	}
	return &PetProjection{Entity: src.Entity.Clone(), Metadata: src.Metadata}
}
