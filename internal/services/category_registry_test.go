package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetplanner/internal/core"
	"budgetplanner/internal/storage"
	"budgetplanner/internal/storage/memory"
)

func TestCategoryRegistry_SeedsDefaults(t *testing.T) {
	slots := memory.New()
	r := NewCategoryRegistry(context.Background(), slots, nil)

	assert.Equal(t, []string{"Food", "Transport", "Entertainment", "Utilities"}, r.List())
	_, err := slots.Load(context.Background(), storage.CategoriesSlot)
	assert.ErrorIs(t, err, storage.ErrSlotNotFound, "seeding must not write the slot")
}

func TestCategoryRegistry_Add(t *testing.T) {
	slots := memory.New()
	r := NewCategoryRegistry(context.Background(), slots, nil)
	ctx := context.Background()

	added, err := r.Add(ctx, "Health")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = r.Add(ctx, "Health")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = r.Add(ctx, "food")
	require.NoError(t, err)
	assert.True(t, added, "matching is case-sensitive")

	assert.Equal(t, []string{"Food", "Transport", "Entertainment", "Utilities", "Health", "food"}, r.List())
	assert.True(t, r.Contains("Health"))
	assert.False(t, r.Contains("health"))

	_, err = r.Add(ctx, "   ")
	assert.ErrorIs(t, err, core.ErrEmptyLabel)

	reopened := NewCategoryRegistry(ctx, slots, nil)
	assert.Equal(t, r.List(), reopened.List())
}

func TestCategoryRegistry_DeleteAt(t *testing.T) {
	slots := memory.New()
	r := NewCategoryRegistry(context.Background(), slots, nil)
	ctx := context.Background()

	require.NoError(t, r.DeleteAt(ctx, 1))
	assert.Equal(t, []string{"Food", "Entertainment", "Utilities"}, r.List())

	for _, pos := range []int{-1, 3, 10} {
		err := r.DeleteAt(ctx, pos)
		assert.True(t, core.IsNotFound(err), "position %d", pos)
	}
	assert.Len(t, r.List(), 3)

	reopened := NewCategoryRegistry(ctx, slots, nil)
	assert.Equal(t, []string{"Food", "Entertainment", "Utilities"}, reopened.List())
}

func TestCategoryRegistry_Restore(t *testing.T) {
	tests := []struct {
		name  string
		slots func() *memory.Store
		want  []string
	}{
		{"saved list", func() *memory.Store {
			return memory.New().Seed(storage.CategoriesSlot, []byte(`["Rent","Food"]`))
		}, []string{"Rent", "Food"}},
		{"duplicates and blanks dropped", func() *memory.Store {
			return memory.New().Seed(storage.CategoriesSlot, []byte(`["A","B","A",""," ","B"]`))
		}, []string{"A", "B"}},
		{"saved empty list stays empty", func() *memory.Store {
			return memory.New().Seed(storage.CategoriesSlot, []byte(`[]`))
		}, []string{}},
		{"corrupt slot falls back to defaults", func() *memory.Store {
			return memory.New().Seed(storage.CategoriesSlot, []byte(`"Food"`))
		}, core.DefaultCategories},
		{"read failure falls back to defaults", func() *memory.Store {
			m := memory.New()
			m.FailWith(errors.New("locked"))
			return m
		}, core.DefaultCategories},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCategoryRegistry(context.Background(), tt.slots(), nil)
			assert.Equal(t, tt.want, r.List())
		})
	}
}

func TestCategoryRegistry_DefaultsNotShared(t *testing.T) {
	r := NewCategoryRegistry(context.Background(), memory.New(), nil)
	require.NoError(t, r.DeleteAt(context.Background(), 0))
	assert.Equal(t, "Food", core.DefaultCategories[0])
}

func TestCategoryRegistry_Observers(t *testing.T) {
	r := NewCategoryRegistry(context.Background(), memory.New(), nil)
	ctx := context.Background()

	var labels []string
	r.Subscribe(ObserverFunc(func(_ context.Context, ev core.ChangeEvent) {
		assert.Equal(t, core.ChangeCategories, ev.Kind)
		labels = append(labels, ev.Label)
	}))

	_, _ = r.Add(ctx, "Health")
	_, _ = r.Add(ctx, "Health")
	_ = r.DeleteAt(ctx, 0)

	assert.Equal(t, []string{"Health", "Food"}, labels)
}
