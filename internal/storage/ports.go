package storage

import (
	"context"
	"errors"
)

// Slot keys used by the planner.
const (
	ExpensesSlot   = "expenses"
	CategoriesSlot = "categories"
)

// ErrSlotNotFound is returned by Load when nothing has been saved under a key.
var ErrSlotNotFound = errors.New("slot not found")

// Ports for durable key-value slots.
type (
	SlotReader interface {
		Load(ctx context.Context, key string) ([]byte, error)
	}

	SlotWriter interface {
		Save(ctx context.Context, key string, data []byte) error
	}

	SlotStore interface {
		SlotReader
		SlotWriter
	}
)
