package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/memstore"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps adoption applications in a memstore table.
type Repository struct {
	store *memstore.Store
	apps  *memstore.Table[*storedApplication]
	seq   *int64
	bound bool
}

type storedApplication struct {
	app      *domain.Application
	metadata projection.Metadata
	seq      int64
}

// NewRepository registers an applications table on store.
func NewRepository(store *memstore.Store) *Repository {
	var seq int64
	return &Repository{
		store: store,
		apps:  memstore.NewTable(store, cloneStored),
		seq:   &seq,
	}
}

// Bound returns a view that assumes the store lock is already held.
func (r *Repository) Bound() *Repository {
	clone := *r
	clone.bound = true
	return &clone
}

func (r *Repository) Create(_ context.Context, app *domain.Application) (*projection.Projection[*domain.Application], error) {
	if app == nil {
		return nil, errors.New("cannot create nil application")
	}
	var out *projection.Projection[*domain.Application]
	err := r.write(func() error {
		dup := r.apps.Scan(func(entry *storedApplication) bool {
			return entry.app.PetID == app.PetID && entry.app.ApplicantID == app.ApplicantID
		})
		if len(dup) > 0 {
			return ports.ErrDuplicate
		}
		*r.seq++
		stored := &storedApplication{
			app:      app.Clone(),
			metadata: projection.Metadata{CreatedAt: app.SubmittedAt, UpdatedAt: r.store.Now()},
			seq:      *r.seq,
		}
		r.apps.Put(app.ID, stored)
		out = projectionCopy(stored)
		return nil
	})
	return out, err
}

func (r *Repository) Save(_ context.Context, app *domain.Application) (*projection.Projection[*domain.Application], error) {
	if app == nil {
		return nil, errors.New("cannot save nil application")
	}
	var out *projection.Projection[*domain.Application]
	err := r.write(func() error {
		existing, ok := r.apps.Get(app.ID)
		if !ok {
			return ports.ErrNotFound
		}
		stored := &storedApplication{
			app:      app.Clone(),
			metadata: projection.Metadata{CreatedAt: existing.metadata.CreatedAt, UpdatedAt: r.store.Now()},
			seq:      existing.seq,
		}
		r.apps.Put(app.ID, stored)
		out = projectionCopy(stored)
		return nil
	})
	return out, err
}

func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*projection.Projection[*domain.Application], error) {
	var (
		entry *storedApplication
		ok    bool
	)
	r.read(func() { entry, ok = r.apps.Get(id) })
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// GetByIDForUpdate is GetByID; the store lock already serialises writers.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*projection.Projection[*domain.Application], error) {
	return r.GetByID(ctx, id)
}

func (r *Repository) ListByApplicant(_ context.Context, applicantID uuid.UUID) ([]*projection.Projection[*domain.Application], error) {
	return r.list(func(app *domain.Application) bool { return app.ApplicantID == applicantID }), nil
}

func (r *Repository) ListByPet(_ context.Context, petID uuid.UUID) ([]*projection.Projection[*domain.Application], error) {
	return r.list(func(app *domain.Application) bool { return app.PetID == petID }), nil
}

func (r *Repository) List(_ context.Context) ([]*projection.Projection[*domain.Application], error) {
	return r.list(func(*domain.Application) bool { return true }), nil
}

func (r *Repository) RejectPendingForPet(_ context.Context, petID, exceptID uuid.UUID) (int64, error) {
	var affected int64
	err := r.write(func() error {
		pending := r.apps.Scan(func(entry *storedApplication) bool {
			return entry.app.PetID == petID && entry.app.ID != exceptID && entry.app.IsPending()
		})
		now := r.store.Now()
		for _, entry := range pending {
			if err := entry.app.Reject(); err != nil {
				return err
			}
			entry.metadata.UpdatedAt = now
			r.apps.Put(entry.app.ID, entry)
			affected++
		}
		return nil
	})
	return affected, err
}

func (r *Repository) DeleteByPet(_ context.Context, petID uuid.UUID) (int64, error) {
	var affected int64
	err := r.write(func() error {
		for _, entry := range r.apps.Scan(func(entry *storedApplication) bool { return entry.app.PetID == petID }) {
			if r.apps.Delete(entry.app.ID) {
				affected++
			}
		}
		return nil
	})
	return affected, err
}

func (r *Repository) list(match func(*domain.Application) bool) []*projection.Projection[*domain.Application] {
	var matches []*storedApplication
	r.read(func() {
		matches = r.apps.Scan(func(entry *storedApplication) bool { return match(entry.app) })
	})
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.metadata.CreatedAt.Equal(b.metadata.CreatedAt) {
			return a.metadata.CreatedAt.After(b.metadata.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]*projection.Projection[*domain.Application], 0, len(matches))
	for _, entry := range matches {
		out = append(out, projectionCopy(entry))
	}
	return out
}

func (r *Repository) read(fn func()) {
	if r.bound {
		fn()
		return
	}
	r.store.View(fn)
}

func (r *Repository) write(fn func() error) error {
	if r.bound {
		return fn()
	}
	return r.store.Update(fn)
}

func projectionCopy(entry *storedApplication) *projection.Projection[*domain.Application] {
	return &projection.Projection[*domain.Application]{
		Entity:   entry.app.Clone(),
		Metadata: entry.metadata,
	}
}

func cloneStored(entry *storedApplication) *storedApplication {
	clone := *entry
	clone.app = entry.app.Clone()
	return &clone
}
