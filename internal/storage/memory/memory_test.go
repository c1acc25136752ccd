package memory

import (
	"context"
	"errors"
	"testing"

	"budgetplanner/internal/storage"
)

func TestMemoryStoreSaveAndLoad(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Load(ctx, storage.ExpensesSlot); !errors.Is(err, storage.ErrSlotNotFound) {
		t.Fatalf("expected slot not found, got %v", err)
	}

	data := []byte(`[]`)
	if err := s.Save(ctx, storage.ExpensesSlot, data); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	data[0] = 'x'

	got, err := s.Load(ctx, storage.ExpensesSlot)
	if err != nil || string(got) != "[]" {
		t.Fatalf("unexpected load: %q err=%v", got, err)
	}
	if _, err := s.Load(ctx, storage.CategoriesSlot); !errors.Is(err, storage.ErrSlotNotFound) {
		t.Fatalf("expected categories slot to stay unwritten, got %v", err)
	}
}

func TestMemoryStoreFailures(t *testing.T) {
	boom := errors.New("disk on fire")
	s := New().Seed(storage.CategoriesSlot, []byte(`["A"]`))
	s.FailWith(boom)

	if _, err := s.Load(context.Background(), storage.CategoriesSlot); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if err := s.Save(context.Background(), storage.CategoriesSlot, nil); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}

	s.FailWith(nil)
	if got, err := s.Load(context.Background(), storage.CategoriesSlot); err != nil || string(got) != `["A"]` {
		t.Fatalf("unexpected load after recovery: %q err=%v", got, err)
	}
}
