package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	types "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

// Service orchestrates the adoption workflow.
type Service struct {
	apps      ports.Repository
	pets      petsports.Repository
	tx        ports.Transactor
	directory ports.ApplicantDirectory
	now       func() time.Time
	newID     func() uuid.UUID
}

// Option customises the service.
type Option func(*Service)

// WithApplicantDirectory enables applicant summaries on returned views.
func WithApplicantDirectory(dir ports.ApplicantDirectory) Option {
	return func(s *Service) { s.directory = dir }
}

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the identifier source used for new applications.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService wires the adoption service. apps and pets serve reads outside a
// transaction; every write goes through tx.
func NewService(apps ports.Repository, pets petsports.Repository, tx ports.Transactor, opts ...Option) *Service {
	s := &Service{
		apps:  apps,
		pets:  pets,
		tx:    tx,
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Submit records a pending application for an available pet.
func (s *Service) Submit(ctx context.Context, input types.SubmitInput) (*types.ApplicationView, error) {
	app, err := domain.NewApplication(s.newID(), input.PetID, input.ApplicantID, input.Message, s.now())
	if err != nil {
		return nil, mapError(err)
	}
	var view *types.ApplicationView
	err = s.tx.WithinTx(ctx, func(ctx context.Context, scope ports.TxScope) error {
		pet, err := scope.Pets().GetByIDForUpdate(ctx, input.PetID)
		if err != nil {
			return err
		}
		if pet.Entity.Status != petdomain.StatusAvailable {
			return errPetUnavailable
		}
		created, err := scope.Applications().Create(ctx, app)
		if err != nil {
			return err
		}
		view = &types.ApplicationView{Application: created, Pet: pet}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.attachApplicants(ctx, []*types.ApplicationView{view})
	return view, nil
}

// ListForApplicant returns the caller's own applications, newest first.
func (s *Service) ListForApplicant(ctx context.Context, applicantID uuid.UUID) ([]*types.ApplicationView, error) {
	apps, err := s.apps.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, mapError(err)
	}
	return s.views(ctx, apps)
}

// ListAll returns every application, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*types.ApplicationView, error) {
	apps, err := s.apps.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return s.views(ctx, apps)
}

// ListForPet returns the applications for an existing pet, newest first.
func (s *Service) ListForPet(ctx context.Context, petID uuid.UUID) ([]*types.ApplicationView, error) {
	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return nil, mapError(err)
	}
	apps, err := s.apps.ListByPet(ctx, petID)
	if err != nil {
		return nil, mapError(err)
	}
	return s.views(ctx, apps)
}

// Approve accepts a pending application, marks its pet adopted and rejects
// every other pending application for that pet in one unit of work.
func (s *Service) Approve(ctx context.Context, input types.ApplicationIdentifier) (*types.ApplicationView, error) {
	// The pet row is locked before the application so approvals and
	// submissions for one pet serialise on the same lock.
	target, err := s.apps.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	var view *types.ApplicationView
	err = s.tx.WithinTx(ctx, func(ctx context.Context, scope ports.TxScope) error {
		pet, err := scope.Pets().GetByIDForUpdate(ctx, target.Entity.PetID)
		if err != nil {
			return err
		}
		current, err := scope.Applications().GetByIDForUpdate(ctx, input.ID)
		if err != nil {
			return err
		}
		app := current.Entity
		if err := app.Approve(); err != nil {
			return err
		}
		if err := pet.Entity.MarkAdopted(); err != nil {
			return err
		}
		savedPet, err := scope.Pets().Save(ctx, pet.Entity)
		if err != nil {
			return err
		}
		saved, err := scope.Applications().Save(ctx, app)
		if err != nil {
			return err
		}
		if _, err := scope.Applications().RejectPendingForPet(ctx, app.PetID, app.ID); err != nil {
			return err
		}
		view = &types.ApplicationView{Application: saved, Pet: savedPet}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.attachApplicants(ctx, []*types.ApplicationView{view})
	return view, nil
}

// Reject declines a pending application. The pet is left untouched.
func (s *Service) Reject(ctx context.Context, input types.ApplicationIdentifier) (*types.ApplicationView, error) {
	var saved *types.ApplicationProjection
	err := s.tx.WithinTx(ctx, func(ctx context.Context, scope ports.TxScope) error {
		current, err := scope.Applications().GetByIDForUpdate(ctx, input.ID)
		if err != nil {
			return err
		}
		app := current.Entity
		if err := app.Reject(); err != nil {
			return err
		}
		saved, err = scope.Applications().Save(ctx, app)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	views, err := s.views(ctx, []*types.ApplicationProjection{saved})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *Service) views(ctx context.Context, apps []*types.ApplicationProjection) ([]*types.ApplicationView, error) {
	out := make([]*types.ApplicationView, 0, len(apps))
	if len(apps) == 0 {
		return out, nil
	}
	petIDs := make([]uuid.UUID, 0, len(apps))
	seen := make(map[uuid.UUID]struct{}, len(apps))
	for _, app := range apps {
		if _, ok := seen[app.Entity.PetID]; ok {
			continue
		}
		seen[app.Entity.PetID] = struct{}{}
		petIDs = append(petIDs, app.Entity.PetID)
	}
	pets, err := s.pets.GetMany(ctx, petIDs)
	if err != nil {
		return nil, mapError(err)
	}
	for _, app := range apps {
		out = append(out, &types.ApplicationView{Application: app, Pet: pets[app.Entity.PetID]})
	}
	s.attachApplicants(ctx, out)
	return out, nil
}

// attachApplicants fills applicant summaries. Lookup failures leave them empty.
func (s *Service) attachApplicants(ctx context.Context, views []*types.ApplicationView) {
	if s.directory == nil || len(views) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(views))
	for _, view := range views {
		ids = append(ids, view.Application.Entity.ApplicantID)
	}
	users, err := s.directory.Lookup(ctx, ids)
	if err != nil {
		return
	}
	for _, view := range views {
		view.Applicant = users[view.Application.Entity.ApplicantID]
	}
}

// IsNotFound reports whether err means the application or its pet does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ports.ErrNotFound) || errors.Is(err, petsports.ErrNotFound)
}

var _ ports.Service = (*Service)(nil)
