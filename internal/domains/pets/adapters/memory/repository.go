package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/memstore"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory implementation used for demos/tests.
type Repository struct {
	store *memstore.Store
	pets  *memstore.Table[*storedPet]
	seq   *int64
	// bound is set on views handed out inside memstore.Store.Atomic, where
	// the caller already holds the lock.
	bound bool
}

type storedPet struct {
	pet      *domain.Pet
	metadata projection.Metadata
	seq      int64
}

// NewRepository registers a pets table on store.
func NewRepository(store *memstore.Store) *Repository {
	var seq int64
	return &Repository{
		store: store,
		pets:  memstore.NewTable(store, cloneStored),
		seq:   &seq,
	}
}

// Bound returns a view that assumes the store lock is already held.
func (r *Repository) Bound() *Repository {
	clone := *r
	clone.bound = true
	return &clone
}

// Create inserts pet, or returns the stored pet when the id is taken.
func (r *Repository) Create(_ context.Context, pet *domain.Pet) (*projection.Projection[*domain.Pet], error) {
	if pet == nil {
		return nil, errors.New("cannot create nil pet")
	}
	var out *projection.Projection[*domain.Pet]
	err := r.write(func() error {
		if existing, ok := r.pets.Get(pet.ID); ok {
			out = projectionCopy(existing)
			return nil
		}
		timestamp := r.store.Now()
		*r.seq++
		stored := &storedPet{
			pet:      pet.Clone(),
			metadata: projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp},
			seq:      *r.seq,
		}
		r.pets.Put(pet.ID, stored)
		out = projectionCopy(stored)
		return nil
	})
	return out, err
}

// Save inserts or replaces a pet while maintaining metadata.
func (r *Repository) Save(_ context.Context, pet *domain.Pet) (*projection.Projection[*domain.Pet], error) {
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	var out *projection.Projection[*domain.Pet]
	err := r.write(func() error {
		timestamp := r.store.Now()
		stored := &storedPet{
			pet:      pet.Clone(),
			metadata: projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp},
		}
		if existing, ok := r.pets.Get(pet.ID); ok {
			stored.metadata.CreatedAt = existing.metadata.CreatedAt
			stored.seq = existing.seq
		} else {
			*r.seq++
			stored.seq = *r.seq
		}
		r.pets.Put(pet.ID, stored)
		out = projectionCopy(stored)
		return nil
	})
	return out, err
}

// GetByID fetches a pet if present.
func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*projection.Projection[*domain.Pet], error) {
	var (
		entry *storedPet
		ok    bool
	)
	r.read(func() { entry, ok = r.pets.Get(id) })
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// GetByIDForUpdate is GetByID; the store lock already serialises writers.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*projection.Projection[*domain.Pet], error) {
	return r.GetByID(ctx, id)
}

// GetMany returns the pets that exist among ids.
func (r *Repository) GetMany(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*projection.Projection[*domain.Pet], error) {
	out := make(map[uuid.UUID]*projection.Projection[*domain.Pet], len(ids))
	r.read(func() {
		for _, id := range ids {
			if entry, ok := r.pets.Get(id); ok {
				out[id] = projectionCopy(entry)
			}
		}
	})
	return out, nil
}

// Delete removes a pet.
func (r *Repository) Delete(_ context.Context, id uuid.UUID) error {
	return r.write(func() error {
		if !r.pets.Delete(id) {
			return ports.ErrNotFound
		}
		return nil
	})
}

// List filters, orders newest first and paginates.
func (r *Repository) List(_ context.Context, query ports.ListQuery) ([]*projection.Projection[*domain.Pet], int64, error) {
	var matches []*storedPet
	r.read(func() {
		matches = r.pets.Scan(func(entry *storedPet) bool { return matchesQuery(entry.pet, query) })
	})
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.metadata.CreatedAt.Equal(b.metadata.CreatedAt) {
			return a.metadata.CreatedAt.After(b.metadata.CreatedAt)
		}
		return a.seq > b.seq
	})
	total := int64(len(matches))
	start := min(query.Offset, len(matches))
	end := len(matches)
	if query.Limit > 0 {
		end = min(start+query.Limit, len(matches))
	}
	list := make([]*projection.Projection[*domain.Pet], 0, end-start)
	for _, entry := range matches[start:end] {
		list = append(list, projectionCopy(entry))
	}
	return list, total, nil
}

func matchesQuery(p *domain.Pet, q ports.ListQuery) bool {
	if q.Species != "" && p.Species != q.Species {
		return false
	}
	if q.Breed != "" && !containsFold(p.Breed, q.Breed) {
		return false
	}
	if q.Search != "" && !containsFold(p.Name, q.Search) && !containsFold(p.Breed, q.Search) {
		return false
	}
	if q.Age != nil && !q.Age.Contains(p.Age) {
		return false
	}
	if len(q.Statuses) > 0 {
		found := false
		for _, s := range q.Statuses {
			if p.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
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

func projectionCopy(entry *storedPet) *projection.Projection[*domain.Pet] {
	return &projection.Projection[*domain.Pet]{
		Entity:   entry.pet.Clone(),
		Metadata: entry.metadata,
	}
}

func cloneStored(entry *storedPet) *storedPet {
	clone := *entry
	clone.pet = entry.pet.Clone()
	return &clone
}
