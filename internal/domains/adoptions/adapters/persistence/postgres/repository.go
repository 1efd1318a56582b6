package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

const uniqueViolation = "23505"

// Repository persists adoption applications in PostgreSQL. The unique index
// ux_adoption_applications_pet_applicant backs the one-application-per-pet rule.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository; db may be a transaction handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type applicationRecord struct {
	ID          uuid.UUID `gorm:"primaryKey;column:id;type:uuid"`
	PetID       uuid.UUID `gorm:"column:pet_id;type:uuid"`
	ApplicantID uuid.UUID `gorm:"column:applicant_id;type:uuid"`
	Message     string    `gorm:"column:message"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (applicationRecord) TableName() string { return "adoption_applications" }

// Create inserts an application and reports ports.ErrDuplicate on a unique violation.
func (r *Repository) Create(ctx context.Context, app *domain.Application) (*projection.Projection[*domain.Application], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if app == nil {
		return nil, errors.New("cannot create nil application")
	}
	record := applicationRecord{
		ID:          app.ID,
		PetID:       app.PetID,
		ApplicantID: app.ApplicantID,
		Message:     app.Message,
		Status:      string(app.Status),
		CreatedAt:   app.SubmittedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}
	return toProjection(&record), nil
}

// Save persists a decision on an existing application.
func (r *Repository) Save(ctx context.Context, app *domain.Application) (*projection.Projection[*domain.Application], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if app == nil {
		return nil, errors.New("cannot save nil application")
	}
	result := r.db.WithContext(ctx).
		Model(&applicationRecord{}).
		Where("id = ?", app.ID).
		Updates(map[string]any{
			"message":    app.Message,
			"status":     string(app.Status),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, app.ID)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*projection.Projection[*domain.Application], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.first(r.db.WithContext(ctx), id)
}

// GetByIDForUpdate takes a row lock that is held until the surrounding transaction ends.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*projection.Projection[*domain.Application], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *Repository) first(db *gorm.DB, id uuid.UUID) (*projection.Projection[*domain.Application], error) {
	var record applicationRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return toProjection(&record), nil
}

func (r *Repository) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*projection.Projection[*domain.Application], error) {
	return r.find(ctx, "applicant_id = ?", applicantID)
}

func (r *Repository) ListByPet(ctx context.Context, petID uuid.UUID) ([]*projection.Projection[*domain.Application], error) {
	return r.find(ctx, "pet_id = ?", petID)
}

func (r *Repository) List(ctx context.Context) ([]*projection.Projection[*domain.Application], error) {
	return r.find(ctx, "")
}

func (r *Repository) find(ctx context.Context, where string, args ...any) ([]*projection.Projection[*domain.Application], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx).Model(&applicationRecord{})
	if where != "" {
		db = db.Where(where, args...)
	}
	var records []applicationRecord
	if err := db.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]*projection.Projection[*domain.Application], 0, len(records))
	for i := range records {
		out = append(out, toProjection(&records[i]))
	}
	return out, nil
}

func (r *Repository) RejectPendingForPet(ctx context.Context, petID, exceptID uuid.UUID) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).
		Model(&applicationRecord{}).
		Where("pet_id = ? AND status = ? AND id <> ?", petID, string(domain.StatusPending), exceptID).
		Updates(map[string]any{
			"status":     string(domain.StatusRejected),
			"updated_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *Repository) DeleteByPet(ctx context.Context, petID uuid.UUID) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Where("pet_id = ?", petID).Delete(&applicationRecord{})
	return result.RowsAffected, result.Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func toProjection(record *applicationRecord) *projection.Projection[*domain.Application] {
	app := &domain.Application{
		ID:          record.ID,
		PetID:       record.PetID,
		ApplicantID: record.ApplicantID,
		Message:     record.Message,
		Status:      domain.Status(record.Status),
		SubmittedAt: record.CreatedAt.UTC(),
	}
	return projection.New(app, record.CreatedAt, record.UpdatedAt)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres repository not configured")
	}
	return nil
}
