package memory

import (
	"context"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petsmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/memstore"
)

var (
	_ ports.Transactor     = (*Transactor)(nil)
	_ petsports.Transactor = petTransactor{}
)

// Transactor runs units of work against memstore tables with snapshot rollback.
type Transactor struct {
	store *memstore.Store
	pets  *petsmemory.Repository
	apps  *Repository
}

// NewTransactor binds the pet and application repositories sharing store.
func NewTransactor(store *memstore.Store, pets *petsmemory.Repository, apps *Repository) *Transactor {
	return &Transactor{store: store, pets: pets, apps: apps}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, scope ports.TxScope) error) error {
	return t.store.Atomic(func() error { return fn(ctx, t.scope()) })
}

// ForPets exposes the same unit of work to the pets context, whose deletes
// cascade to applications.
func (t *Transactor) ForPets() petsports.Transactor {
	return petTransactor{t: t}
}

func (t *Transactor) scope() txScope {
	return txScope{pets: t.pets.Bound(), apps: t.apps.Bound()}
}

type petTransactor struct {
	t *Transactor
}

func (p petTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, scope petsports.TxScope) error) error {
	return p.t.store.Atomic(func() error { return fn(ctx, p.t.scope()) })
}

type txScope struct {
	pets *petsmemory.Repository
	apps *Repository
}

func (s txScope) Pets() petsports.Repository             { return s.pets }
func (s txScope) Applications() ports.Repository         { return s.apps }
func (s txScope) References() petsports.ReferenceCleaner { return s.apps }
