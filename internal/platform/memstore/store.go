// Package memstore backs the in-memory adapters. Tables registered on one
// Store share its lock, so a unit of work spanning several repositories can
// run atomically and roll back on error.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type table interface {
	snapshot() (restore func())
}

// Store owns the lock and the registered tables.
type Store struct {
	mu     sync.RWMutex
	tables []table
	now    func() time.Time
}

// New constructs an empty store using the wall clock.
func New() *Store {
	return &Store{now: time.Now}
}

// WithClock overrides the clock used for persistence metadata.
func (s *Store) WithClock(now func() time.Time) {
	if now == nil {
		return
	}
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Now returns the store clock. Callers must hold the lock.
func (s *Store) Now() time.Time {
	return s.now()
}

// View runs fn under the read lock.
func (s *Store) View(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// Update runs fn under the write lock without snapshotting.
func (s *Store) Update(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Atomic runs fn under the write lock. If fn returns an error or panics,
// every registered table is restored to its state before the call.
func (s *Store) Atomic(fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restores := make([]func(), 0, len(s.tables))
	for _, t := range s.tables {
		restores = append(restores, t.snapshot())
	}
	rollback := func() {
		for _, restore := range restores {
			restore()
		}
	}
	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()
	if err = fn(); err != nil {
		rollback()
	}
	return err
}

// Table is a keyed collection of rows registered on a Store. It performs no
// locking of its own; callers go through Store.View, Update or Atomic.
type Table[V any] struct {
	rows  map[uuid.UUID]V
	clone func(V) V
}

// NewTable registers a table on the store. clone must return a deep copy.
func NewTable[V any](s *Store, clone func(V) V) *Table[V] {
	t := &Table[V]{rows: map[uuid.UUID]V{}, clone: clone}
	s.mu.Lock()
	s.tables = append(s.tables, t)
	s.mu.Unlock()
	return t
}

// Get returns a copy of the row stored under id.
func (t *Table[V]) Get(id uuid.UUID) (V, bool) {
	row, ok := t.rows[id]
	if !ok {
		var zero V
		return zero, false
	}
	return t.clone(row), true
}

// Put stores a copy of row under id.
func (t *Table[V]) Put(id uuid.UUID, row V) {
	t.rows[id] = t.clone(row)
}

// Delete removes id and reports whether it existed.
func (t *Table[V]) Delete(id uuid.UUID) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

// Len reports the number of rows.
func (t *Table[V]) Len() int {
	return len(t.rows)
}

// Scan returns copies of every row accepted by match, in no particular order.
func (t *Table[V]) Scan(match func(V) bool) []V {
	out := make([]V, 0)
	for _, row := range t.rows {
		if match == nil || match(row) {
			out = append(out, t.clone(row))
		}
	}
	return out
}

func (t *Table[V]) snapshot() func() {
	saved := make(map[uuid.UUID]V, len(t.rows))
	for id, row := range t.rows {
		saved[id] = t.clone(row)
	}
	return func() {
		t.rows = saved
	}
}
