package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists pets in PostgreSQL using GORM-mapped columns. The schema
// is owned by internal/platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB
// lifecycle; db may be a transaction handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type petRecord struct {
	ID          uuid.UUID  `gorm:"primaryKey;column:id;type:uuid"`
	Name        string     `gorm:"column:name"`
	Species     string     `gorm:"column:species"`
	Breed       string     `gorm:"column:breed"`
	Age         float64    `gorm:"column:age"`
	Gender      string     `gorm:"column:gender"`
	Description string     `gorm:"column:description"`
	ImageURL    string     `gorm:"column:image_url"`
	Status      string     `gorm:"column:status"`
	AddedBy     *uuid.UUID `gorm:"column:added_by;type:uuid"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (petRecord) TableName() string { return "pets" }

func newPetRecord(p *domain.Pet) petRecord {
	rec := petRecord{
		ID:          p.ID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Age:         p.Age,
		Gender:      string(p.Gender),
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Status:      string(p.Status),
	}
	if p.AddedBy != uuid.Nil {
		addedBy := p.AddedBy
		rec.AddedBy = &addedBy
	}
	return rec
}

// Create inserts a pet. An existing row with the same id is left untouched
// and returned.
func (r *Repository) Create(ctx context.Context, pet *domain.Pet) (*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("cannot create nil pet")
	}
	record := newPetRecord(pet)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, pet.ID)
}

// Save inserts or updates a pet aggregate.
func (r *Repository) Save(ctx context.Context, pet *domain.Pet) (*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	record := newPetRecord(pet)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":        record.Name,
				"species":     record.Species,
				"breed":       record.Breed,
				"age":         record.Age,
				"gender":      record.Gender,
				"description": record.Description,
				"image_url":   record.ImageURL,
				"status":      record.Status,
				"updated_at":  gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, pet.ID)
}

// GetByID fetches a pet by identifier.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.first(r.db.WithContext(ctx), id)
}

// GetByIDForUpdate takes a row lock that is held until the surrounding transaction ends.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *Repository) first(db *gorm.DB, id uuid.UUID) (*projection.Projection[*domain.Pet], error) {
	var record petRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return toProjection(&record), nil
}

// GetMany loads the pets that exist among ids.
func (r *Repository) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*projection.Projection[*domain.Pet], len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var records []petRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	for i := range records {
		out[records[i].ID] = toProjection(&records[i])
	}
	return out, nil
}

// Delete removes a pet by identifier.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&petRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List filters the catalog, newest first, and counts the full match set.
func (r *Repository) List(ctx context.Context, query ports.ListQuery) ([]*projection.Projection[*domain.Pet], int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	base := r.db.WithContext(ctx).Model(&petRecord{})
	if query.Species != "" {
		base = base.Where("species = ?", query.Species)
	}
	if query.Breed != "" {
		base = base.Where("breed ILIKE ?", likePattern(query.Breed))
	}
	if query.Search != "" {
		pattern := likePattern(query.Search)
		base = base.Where("(name ILIKE ? OR breed ILIKE ?)", pattern, pattern)
	}
	if query.Age != nil {
		base = base.Where("age >= ?", query.Age.Min)
		if query.Age.Bounded() {
			base = base.Where("age < ?", query.Age.Max)
		}
	}
	if len(query.Statuses) > 0 {
		statuses := make([]string, 0, len(query.Statuses))
		for _, s := range query.Statuses {
			statuses = append(statuses, string(s))
		}
		base = base.Where("status = ANY(?)", pq.Array(statuses))
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page := base.Session(&gorm.Session{}).Order("created_at DESC").Order("id DESC").Offset(query.Offset)
	if query.Limit > 0 {
		page = page.Limit(query.Limit)
	}
	var records []petRecord
	if err := page.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	list := make([]*projection.Projection[*domain.Pet], 0, len(records))
	for i := range records {
		list = append(list, toProjection(&records[i]))
	}
	return list, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func toProjection(record *petRecord) *projection.Projection[*domain.Pet] {
	return projection.New(record.toDomain(), record.CreatedAt, record.UpdatedAt)
}

func (r *petRecord) toDomain() *domain.Pet {
	pet := &domain.Pet{
		ID:          r.ID,
		Name:        r.Name,
		Species:     r.Species,
		Breed:       r.Breed,
		Age:         r.Age,
		Gender:      domain.Gender(r.Gender),
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Status:      domain.Status(r.Status),
	}
	if r.AddedBy != nil {
		pet.AddedBy = *r.AddedBy
	}
	return pet
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres repository not configured")
	}
	return nil
}
