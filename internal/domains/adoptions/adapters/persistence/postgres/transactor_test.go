package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	adoptionsapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	petspostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
)

var petColumns = []string{"id", "name", "species", "breed", "age", "gender", "description", "image_url", "status", "added_by", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func petRow(id uuid.UUID, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(petColumns).
		AddRow(id.String(), "Buddy", "Dog", "Golden Retriever", 3.0, "Male", "Friendly", "", status, nil, now, now)
}

func TestDeletePet_RollsBackWhenCascadeFails(t *testing.T) {
	db, mock := newMockDB(t)
	petID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "pets" WHERE id = .* FOR UPDATE`).WillReturnRows(petRow(petID, "available"))
	mock.ExpectExec(`DELETE FROM "adoption_applications" WHERE pet_id = `).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	svc := petsapp.NewService(petspostgres.NewRepository(db), NewTransactor(db).ForPets())
	err := svc.DeletePet(context.Background(), petstypes.PetIdentifier{ID: petID})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_DuplicateMapsToConflict(t *testing.T) {
	db, mock := newMockDB(t)
	petID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "pets" WHERE id = .* FOR UPDATE`).WillReturnRows(petRow(petID, "available"))
	mock.ExpectExec(`INSERT INTO "adoption_applications"`).WillReturnError(&pgconn.PgError{Code: uniqueViolation})
	mock.ExpectRollback()

	svc := adoptionsapp.NewService(NewRepository(db), petspostgres.NewRepository(db), NewTransactor(db))
	_, err := svc.Submit(context.Background(), types.SubmitInput{PetID: petID, ApplicantID: uuid.New()})
	require.ErrorIs(t, err, adoptionsapp.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_UnavailablePetRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	petID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "pets" WHERE id = .* FOR UPDATE`).WillReturnRows(petRow(petID, "adopted"))
	mock.ExpectRollback()

	svc := adoptionsapp.NewService(NewRepository(db), petspostgres.NewRepository(db), NewTransactor(db))
	_, err := svc.Submit(context.Background(), types.SubmitInput{PetID: petID, ApplicantID: uuid.New()})
	require.ErrorIs(t, err, adoptionsapp.ErrInvalidState)
	require.NoError(t, mock.ExpectationsWereMet())
}
