package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
	"budgetplanner/internal/storage"
)

// CategoryRegistry keeps the de-duplicated list of category labels offered to
// the user. It is persisted to the "categories" slot independently of expenses.
type CategoryRegistry struct {
	mu     sync.Mutex
	slots  storage.SlotStore
	logger *log.Logger
	labels []string
	obs    observers
	now    func() time.Time
}

// NewCategoryRegistry loads the saved labels, falling back to the defaults
// when nothing usable has been saved. Seeding does not write the slot.
func NewCategoryRegistry(ctx context.Context, slots storage.SlotStore, logger *log.Logger) *CategoryRegistry {
	if logger == nil {
		logger = log.Discard()
	}
	r := &CategoryRegistry{
		slots:  slots,
		logger: logger.WithComponent(log.ComponentCategory),
		now:    time.Now,
	}
	r.labels = r.restore(ctx)
	return r
}

func (r *CategoryRegistry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.labels)
}

// Contains reports an exact, case-sensitive match.
func (r *CategoryRegistry) Contains(label string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.labels, label)
}

// Add appends label unless it is already present. It reports whether the
// registry changed.
func (r *CategoryRegistry) Add(ctx context.Context, label string) (bool, error) {
	if strings.TrimSpace(label) == "" {
		return false, &core.ValidationError{Field: "category", Err: core.ErrEmptyLabel}
	}

	r.mu.Lock()
	if slices.Contains(r.labels, label) {
		r.mu.Unlock()
		return false, nil
	}
	r.labels = append(r.labels, label)
	n := len(r.labels)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "Category added", log.FieldLabel, label, log.FieldOperation, log.OpCreate)
	r.obs.notify(ctx, core.ChangeEvent{Kind: core.ChangeCategories, Slot: storage.CategoriesSlot, Label: label, Count: n, At: r.now()})
	return true, nil
}

// DeleteAt removes the label at position.
func (r *CategoryRegistry) DeleteAt(ctx context.Context, position int) error {
	r.mu.Lock()
	if position < 0 || position >= len(r.labels) {
		r.mu.Unlock()
		return &core.NotFoundError{Resource: "category at position", Key: strconv.Itoa(position)}
	}
	label := r.labels[position]
	r.labels = slices.Delete(r.labels, position, position+1)
	n := len(r.labels)
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "Category deleted", log.FieldLabel, label, log.FieldPosition, position, log.FieldOperation, log.OpDelete)
	r.obs.notify(ctx, core.ChangeEvent{Kind: core.ChangeCategories, Slot: storage.CategoriesSlot, Label: label, Count: n, At: r.now()})
	return nil
}

// Subscribe registers obs for change events and returns its cancel func.
func (r *CategoryRegistry) Subscribe(obs Observer) func() {
	return r.obs.subscribe(obs)
}

func (r *CategoryRegistry) persistLocked(ctx context.Context) {
	data, err := json.Marshal(r.labels)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to encode categories", log.FieldError, err.Error(), log.FieldErrorType, log.ErrorTypeInternal)
		return
	}
	if err := r.slots.Save(ctx, storage.CategoriesSlot, data); err != nil {
		r.logger.ErrorContext(ctx, "Failed to persist categories", log.NewFields().
			WithError(err).WithErrorType(log.ErrorTypeDatabase).WithSlot(storage.CategoriesSlot).
			WithOperation(log.OpSave).ToSlice()...)
	}
}

func (r *CategoryRegistry) restore(ctx context.Context) []string {
	defaults := append([]string(nil), core.DefaultCategories...)

	data, err := r.slots.Load(ctx, storage.CategoriesSlot)
	if errors.Is(err, storage.ErrSlotNotFound) {
		r.logger.DebugContext(ctx, "No saved categories, using defaults", log.FieldSlot, storage.CategoriesSlot)
		return defaults
	}
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to read saved categories, using defaults", log.NewFields().
			WithError(err).WithErrorType(log.ErrorTypeDatabase).WithSlot(storage.CategoriesSlot).ToSlice()...)
		return defaults
	}

	labels, err := decodeLabels(data)
	if err != nil {
		r.logger.WarnContext(ctx, "Saved categories are corrupt, using defaults", log.NewFields().
			WithError(err).WithErrorType(log.ErrorTypeDecode).WithSlot(storage.CategoriesSlot).ToSlice()...)
		return defaults
	}
	return labels
}

func decodeLabels(data []byte) ([]string, error) {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return dedupe(labels), nil
}

// dedupe preserves input order and drops repeats and blanks.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
