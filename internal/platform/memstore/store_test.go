package memstore

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name string
	Tags []string
}

func cloneRow(r *row) *row {
	c := *r
	c.Tags = append([]string(nil), r.Tags...)
	return &c
}

func TestAtomic_RollsBackEveryTableOnError(t *testing.T) {
	store := New()
	first := NewTable(store, cloneRow)
	second := NewTable(store, cloneRow)
	keep := uuid.New()
	require.NoError(t, store.Update(func() error {
		first.Put(keep, &row{Name: "kept"})
		return nil
	}))

	errStop := errors.New("stop")
	err := store.Atomic(func() error {
		first.Delete(keep)
		second.Put(uuid.New(), &row{Name: "transient"})
		return errStop
	})

	require.ErrorIs(t, err, errStop)
	store.View(func() {
		got, ok := first.Get(keep)
		require.True(t, ok)
		assert.Equal(t, "kept", got.Name)
		assert.Zero(t, second.Len())
	})
}

func TestAtomic_RollsBackOnPanic(t *testing.T) {
	store := New()
	tbl := NewTable(store, cloneRow)

	require.Panics(t, func() {
		_ = store.Atomic(func() error {
			tbl.Put(uuid.New(), &row{Name: "half-written"})
			panic("boom")
		})
	})
	store.View(func() {
		assert.Zero(t, tbl.Len())
	})
}

func TestAtomic_CommitsOnSuccess(t *testing.T) {
	store := New()
	tbl := NewTable(store, cloneRow)
	id := uuid.New()

	require.NoError(t, store.Atomic(func() error {
		tbl.Put(id, &row{Name: "saved"})
		return nil
	}))
	store.View(func() {
		_, ok := tbl.Get(id)
		assert.True(t, ok)
	})
}

func TestTable_ReturnsCopies(t *testing.T) {
	store := New()
	tbl := NewTable(store, cloneRow)
	id := uuid.New()
	original := &row{Name: "a", Tags: []string{"x"}}

	_ = store.Update(func() error {
		tbl.Put(id, original)
		return nil
	})
	original.Tags[0] = "mutated"

	store.View(func() {
		got, _ := tbl.Get(id)
		assert.Equal(t, []string{"x"}, got.Tags)
		got.Name = "changed"
		again, _ := tbl.Get(id)
		assert.Equal(t, "a", again.Name)
	})
}
