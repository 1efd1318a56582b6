package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	types "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 1000
)

var errInvalidPage = errors.New("page and limit must be positive")

// Service orchestrates the pets bounded context use cases.
type Service struct {
	repo          ports.Repository
	tx            ports.Transactor
	defaultStatus []domain.Status
	pageSize      int
	maxPageSize   int
	newID         func() uuid.UUID
}

// Option customises the service.
type Option func(*Service)

// WithDefaultStatus sets the status filter applied when a listing names none.
// Passing no statuses lists every pet.
func WithDefaultStatus(statuses ...domain.Status) Option {
	return func(s *Service) {
		s.defaultStatus = append([]domain.Status(nil), statuses...)
	}
}

// WithPageSize sets the default and maximum page sizes. Non-positive values keep the defaults.
func WithPageSize(defaultSize, maxSize int) Option {
	return func(s *Service) {
		if defaultSize > 0 {
			s.pageSize = defaultSize
		}
		if maxSize > 0 {
			s.maxPageSize = maxSize
		}
	}
}

// WithIDGenerator replaces the identifier source used for new pets.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService wires the pets service with its dependencies. tx may be nil for
// processes that never delete pets; deletes then skip the reference cascade.
func NewService(repo ports.Repository, tx ports.Transactor, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		tx:            tx,
		defaultStatus: []domain.Status{domain.StatusAvailable},
		pageSize:      DefaultPageSize,
		maxPageSize:   MaxPageSize,
		newID:         uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.pageSize > s.maxPageSize {
		s.pageSize = s.maxPageSize
	}
	return s
}

// CreatePet persists a new pet aggregate. Creating an id that already exists
// returns the stored pet unchanged, so retried intake workflows and reseeding
// never overwrite a pet.
func (s *Service) CreatePet(ctx context.Context, input types.CreatePetInput) (*types.PetProjection, error) {
	id := input.ID
	if id == uuid.Nil {
		id = s.newID()
	}
	var status domain.Status
	if input.Status != nil && strings.TrimSpace(*input.Status) != "" {
		parsed, err := domain.ParseStatus(*input.Status)
		if err != nil {
			return nil, mapError(err)
		}
		status = parsed
	}
	pet, err := domain.NewPet(id, domain.Profile{
		Name:        input.Name,
		Species:     input.Species,
		Breed:       input.Breed,
		Age:         input.Age,
		Gender:      domain.Gender(input.Gender),
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}, status, input.AddedBy)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, pet)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// UpdatePet merges the supplied fields into an existing pet. With a
// transactor the pet row stays locked from read to write, serialising the
// update with approvals of the same pet.
func (s *Service) UpdatePet(ctx context.Context, input types.UpdatePetInput) (*types.PetProjection, error) {
	var (
		saved *types.PetProjection
		err   error
	)
	if s.tx == nil {
		saved, err = s.updatePet(ctx, s.repo, input)
	} else {
		err = s.tx.WithinTx(ctx, func(ctx context.Context, scope ports.TxScope) error {
			var err error
			saved, err = s.updatePet(ctx, scope.Pets(), input)
			return err
		})
	}
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) updatePet(ctx context.Context, repo ports.Repository, input types.UpdatePetInput) (*types.PetProjection, error) {
	current, err := repo.GetByIDForUpdate(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	pet := current.Entity
	if err := applyPartialUpdate(pet, input); err != nil {
		return nil, err
	}
	return repo.Save(ctx, pet)
}

// DeletePet removes a pet together with every application that references it.
func (s *Service) DeletePet(ctx context.Context, input types.PetIdentifier) error {
	if s.tx == nil {
		return mapError(s.repo.Delete(ctx, input.ID))
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context, scope ports.TxScope) error {
		if _, err := scope.Pets().GetByIDForUpdate(ctx, input.ID); err != nil {
			return err
		}
		if _, err := scope.References().DeleteByPet(ctx, input.ID); err != nil {
			return err
		}
		return scope.Pets().Delete(ctx, input.ID)
	})
	return mapError(err)
}

// GetPet loads a single pet aggregate.
func (s *Service) GetPet(ctx context.Context, input types.PetIdentifier) (*types.PetProjection, error) {
	result, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// ListPets searches the catalog, newest first.
func (s *Service) ListPets(ctx context.Context, input types.ListPetsInput) (*types.PetPage, error) {
	query, page, limit, err := s.buildQuery(input)
	if err != nil {
		return nil, mapError(err)
	}
	items, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	return &types.PetPage{Items: items, Page: page, Limit: limit, Total: total}, nil
}

func (s *Service) buildQuery(input types.ListPetsInput) (ports.ListQuery, int, int, error) {
	page, limit := input.Page, input.Limit
	if page < 0 || limit < 0 {
		return ports.ListQuery{}, 0, 0, errInvalidPage
	}
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = s.pageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	query := ports.ListQuery{
		Species: strings.TrimSpace(input.Species),
		Breed:   strings.TrimSpace(input.Breed),
		Search:  strings.TrimSpace(input.Search),
		Offset:  projection.Offset(page, limit),
		Limit:   limit,
	}
	if input.AgeBucket != nil {
		bucket, err := domain.ParseAgeBucket(*input.AgeBucket)
		if err != nil {
			return ports.ListQuery{}, 0, 0, err
		}
		query.Age = &bucket
	}
	if len(input.Statuses) == 0 {
		query.Statuses = append([]domain.Status(nil), s.defaultStatus...)
	} else {
		for _, raw := range input.Statuses {
			status, err := domain.ParseStatus(raw)
			if err != nil {
				return ports.ListQuery{}, 0, 0, err
			}
			query.Statuses = append(query.Statuses, status)
		}
	}
	return query, page, limit, nil
}

func applyPartialUpdate(target *domain.Pet, input types.UpdatePetInput) error {
	if input.Name != nil {
		if err := target.Rename(*input.Name); err != nil {
			return err
		}
	}
	if input.Species != nil || input.Breed != nil {
		species, breed := target.Species, target.Breed
		if input.Species != nil {
			species = *input.Species
		}
		if input.Breed != nil {
			breed = *input.Breed
		}
		if err := target.Reclassify(species, breed); err != nil {
			return err
		}
	}
	if input.Age != nil {
		if err := target.UpdateAge(*input.Age); err != nil {
			return err
		}
	}
	if input.Gender != nil {
		if err := target.UpdateGender(domain.Gender(*input.Gender)); err != nil {
			return err
		}
	}
	if input.Description != nil {
		if err := target.Describe(*input.Description); err != nil {
			return err
		}
	}
	if input.ImageURL != nil {
		target.UpdateImage(*input.ImageURL)
	}
	if input.Status != nil {
		status, err := domain.ParseStatus(*input.Status)
		if err != nil {
			return err
		}
		if status != target.Status {
			if err := target.UpdateStatus(status); err != nil {
				return err
			}
		}
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
