package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	adoptionsmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/memory"
	adoptionspostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptionsports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petsmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petspostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userpostgres "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/memstore"
	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
)

// Transactor is satisfied by both storage backends: one unit of work shared
// by the adoptions and pets contexts.
type Transactor interface {
	adoptionsports.Transactor
	ForPets() petsports.Transactor
}

// Backend groups the repositories of one storage engine.
type Backend struct {
	Name         string
	Pets         petsports.Repository
	Applications adoptionsports.Repository
	Users        userports.Repository
	Tx           Transactor
	// Ping is nil for the in-memory backend.
	Ping func(ctx context.Context) error
	// DB is nil for the in-memory backend.
	DB *gorm.DB
}

// OpenBackend connects to PostgreSQL when dsn is set and falls back to
// in-memory storage otherwise. The returned func releases the connection.
func OpenBackend(ctx context.Context, dsn string, migrate bool, logger *slog.Logger) (*Backend, func(), error) {
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, dsn, logger)
	if db == nil {
		return NewMemoryBackend(), cleanup, nil
	}
	if migrate {
		if err := migrations.Run(db); err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to apply migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}
	return NewPostgresBackend(db), cleanup, nil
}

// NewMemoryBackend builds repositories sharing one memstore so transactions
// span pets and applications.
func NewMemoryBackend() *Backend {
	store := memstore.New()
	pets := petsmemory.NewRepository(store)
	apps := adoptionsmemory.NewRepository(store)
	return &Backend{
		Name:         "memory",
		Pets:         pets,
		Applications: apps,
		Users:        usermemory.NewRepository(store),
		Tx:           adoptionsmemory.NewTransactor(store, pets, apps),
	}
}

// NewPostgresBackend builds gorm repositories on db.
func NewPostgresBackend(db *gorm.DB) *Backend {
	return &Backend{
		Name:         "postgres",
		Pets:         petspostgres.NewRepository(db),
		Applications: adoptionspostgres.NewRepository(db),
		Users:        userpostgres.NewRepository(db),
		Tx:           adoptionspostgres.NewTransactor(db),
		DB:           db,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.New("postgres unreachable")
			}
			return nil
		},
	}
}
