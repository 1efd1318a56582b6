package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var (
	ErrNotFound = errors.New("adoption application not found")
	// ErrDuplicate is returned by Create when the applicant already applied for the pet.
	ErrDuplicate = errors.New("adoption application already exists for pet and applicant")
)

type Repository interface {
	// Create inserts a new application, enforcing one application per (pet, applicant).
	Create(ctx context.Context, app *domain.Application) (*projection.Projection[*domain.Application], error)
	Save(ctx context.Context, app *domain.Application) (*projection.Projection[*domain.Application], error)
	GetByID(ctx context.Context, id uuid.UUID) (*projection.Projection[*domain.Application], error)
	// GetByIDForUpdate reads the application and, inside a transaction, locks it until commit.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*projection.Projection[*domain.Application], error)
	// List* return applications newest first.
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*projection.Projection[*domain.Application], error)
	ListByPet(ctx context.Context, petID uuid.UUID) ([]*projection.Projection[*domain.Application], error)
	List(ctx context.Context) ([]*projection.Projection[*domain.Application], error)
	// RejectPendingForPet rejects every pending application for petID except exceptID.
	RejectPendingForPet(ctx context.Context, petID, exceptID uuid.UUID) (int64, error)
	DeleteByPet(ctx context.Context, petID uuid.UUID) (int64, error)
}

// TxScope exposes repositories bound to one unit of work.
type TxScope interface {
	Pets() petsports.Repository
	Applications() Repository
}

// Transactor runs fn atomically. Any error returned by fn rolls back every write.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, scope TxScope) error) error
}
