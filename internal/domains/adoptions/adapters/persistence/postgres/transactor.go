package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petspostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

var (
	_ ports.Transactor     = (*Transactor)(nil)
	_ petsports.Transactor = petTransactor{}
)

// Transactor runs units of work inside a database transaction.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, scope ports.TxScope) error) error {
	return t.run(ctx, func(ctx context.Context, scope txScope) error { return fn(ctx, scope) })
}

// ForPets exposes the same transaction boundary to the pets context, whose
// deletes cascade to applications.
func (t *Transactor) ForPets() petsports.Transactor {
	return petTransactor{t: t}
}

func (t *Transactor) run(ctx context.Context, fn func(ctx context.Context, scope txScope) error) error {
	if t == nil || t.db == nil {
		return errors.New("postgres transactor not configured")
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, txScope{tx: tx})
	})
}

type petTransactor struct {
	t *Transactor
}

func (p petTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, scope petsports.TxScope) error) error {
	return p.t.run(ctx, func(ctx context.Context, scope txScope) error { return fn(ctx, scope) })
}

type txScope struct {
	tx *gorm.DB
}

func (s txScope) Pets() petsports.Repository             { return petspostgres.NewRepository(s.tx) }
func (s txScope) Applications() ports.Repository         { return NewRepository(s.tx) }
func (s txScope) References() petsports.ReferenceCleaner { return NewRepository(s.tx) }
