package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var ErrNotFound = errors.New("pet not found")

// ListQuery is the storage-level form of a catalog search.
type ListQuery struct {
	Species  string
	Breed    string
	Search   string
	Age      *domain.AgeBucket
	Statuses []domain.Status
	Offset   int
	Limit    int
}

type Repository interface {
	// Create inserts pet unless its id is already stored, in which case the
	// stored pet is returned unchanged.
	Create(ctx context.Context, pet *domain.Pet) (*projection.Projection[*domain.Pet], error)
	Save(ctx context.Context, pet *domain.Pet) (*projection.Projection[*domain.Pet], error)
	GetByID(ctx context.Context, id uuid.UUID) (*projection.Projection[*domain.Pet], error)
	// GetByIDForUpdate reads the pet and, inside a transaction, locks it until commit.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*projection.Projection[*domain.Pet], error)
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*projection.Projection[*domain.Pet], error)
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns the requested page ordered newest first plus the total match count.
	List(ctx context.Context, query ListQuery) ([]*projection.Projection[*domain.Pet], int64, error)
}

// ReferenceCleaner removes records owned by other contexts that point at a pet.
type ReferenceCleaner interface {
	DeleteByPet(ctx context.Context, petID uuid.UUID) (int64, error)
}

// TxScope exposes repositories bound to one unit of work.
type TxScope interface {
	Pets() Repository
	References() ReferenceCleaner
}

// Transactor runs fn atomically. Any error returned by fn rolls back every write.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, scope TxScope) error) error
}
