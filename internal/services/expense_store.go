package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
	"budgetplanner/internal/storage"
)

// ExpenseStore owns the expense collection. Every mutation goes through it and
// is followed by a best-effort write of the whole collection to the
// "expenses" slot.
type ExpenseStore struct {
	mu     sync.Mutex
	slots  storage.SlotStore
	logger *log.Logger
	items  []core.Expense
	obs    observers
	now    func() time.Time
}

// NewExpenseStore restores the collection from slots. Missing or unreadable
// data leaves the store empty; it never fails.
func NewExpenseStore(ctx context.Context, slots storage.SlotStore, logger *log.Logger) *ExpenseStore {
	if logger == nil {
		logger = log.Discard()
	}
	s := &ExpenseStore{
		slots:  slots,
		logger: logger.WithComponent(log.ComponentExpense),
		now:    time.Now,
	}
	s.items = s.restore(ctx)
	return s
}

// List returns a copy of the collection in stored order.
func (s *ExpenseStore) List() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneExpenses(s.items)
}

// Len returns the number of stored expenses.
func (s *ExpenseStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Get returns the expense with the given id.
func (s *ExpenseStore) Get(id core.ExpenseID) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return core.Expense{}, &core.NotFoundError{Resource: "expense", Key: id.String()}
	}
	return s.items[i].Clone(), nil
}

// Add appends e, assigning an id when it has none, and returns the stored record.
// Dates are stored in UTC.
func (s *ExpenseStore) Add(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e = normalize(e)
	if e.ID.IsZero() {
		e.ID = core.NewExpenseID()
	}

	s.mu.Lock()
	if s.indexLocked(e.ID) >= 0 {
		s.mu.Unlock()
		return core.Expense{}, fmt.Errorf("add expense %s: %w", e.ID, core.ErrDuplicateID)
	}
	s.items = append(s.items, e)
	n := len(s.items)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense added", log.NewFields().
		WithExpense(e.ID.String(), e.Category, e.Amount, e.PaymentMethod).
		WithOperation(log.OpCreate).
		ToSlice()...)
	s.obs.notify(ctx, core.ChangeEvent{Kind: core.ChangeAdded, Slot: storage.ExpensesSlot, IDs: []core.ExpenseID{e.ID}, Count: n, At: s.now()})
	return e.Clone(), nil
}

// Edit replaces the record carrying e.ID in full, keeping its position.
func (s *ExpenseStore) Edit(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e = normalize(e)

	s.mu.Lock()
	i := s.indexLocked(e.ID)
	if i < 0 {
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "Edit of unknown expense ignored",
			log.FieldExpenseID, e.ID.String(), log.FieldErrorType, log.ErrorTypeNotFound)
		return &core.NotFoundError{Resource: "expense", Key: e.ID.String()}
	}
	s.items[i] = e
	n := len(s.items)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense edited", log.NewFields().
		WithExpense(e.ID.String(), e.Category, e.Amount, e.PaymentMethod).
		WithOperation(log.OpUpdate).
		ToSlice()...)
	s.obs.notify(ctx, core.ChangeEvent{Kind: core.ChangeEdited, Slot: storage.ExpensesSlot, IDs: []core.ExpenseID{e.ID}, Count: n, At: s.now()})
	return nil
}

// Update is an alias of Edit.
func (s *ExpenseStore) Update(ctx context.Context, e core.Expense) error {
	return s.Edit(ctx, e)
}

// Delete removes the expense with the given id.
func (s *ExpenseStore) Delete(ctx context.Context, id core.ExpenseID) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "Delete of unknown expense ignored",
			log.FieldExpenseID, id.String(), log.FieldErrorType, log.ErrorTypeNotFound)
		return &core.NotFoundError{Resource: "expense", Key: id.String()}
	}
	s.items = slices.Delete(s.items, i, i+1)
	n := len(s.items)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense deleted", log.FieldExpenseID, id.String(), log.FieldOperation, log.OpDelete)
	s.obs.notify(ctx, core.ChangeEvent{Kind: core.ChangeDeleted, Slot: storage.ExpensesSlot, IDs: []core.ExpenseID{id}, Count: n, At: s.now()})
	return nil
}

// DeleteAt removes the expenses at the given positions of the stored order.
// Either every position is valid and all are removed, or nothing changes.
func (s *ExpenseStore) DeleteAt(ctx context.Context, positions ...int) error {
	if len(positions) == 0 {
		return nil
	}

	s.mu.Lock()
	uniq := uniquePositions(positions)
	for _, p := range uniq {
		if p < 0 || p >= len(s.items) {
			s.mu.Unlock()
			return &core.NotFoundError{Resource: "expense at position", Key: strconv.Itoa(p)}
		}
	}
	removed := make([]core.ExpenseID, 0, len(uniq))
	for i := len(uniq) - 1; i >= 0; i-- {
		p := uniq[i]
		removed = append(removed, s.items[p].ID)
		s.items = slices.Delete(s.items, p, p+1)
	}
	slices.Reverse(removed)
	n := len(s.items)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expenses deleted by position", log.FieldCount, len(removed), log.FieldOperation, log.OpDelete)
	s.obs.notify(ctx, core.ChangeEvent{Kind: core.ChangeDeleted, Slot: storage.ExpensesSlot, IDs: removed, Count: n, At: s.now()})
	return nil
}

// Sort reorders the stored collection in place. Ties keep their relative order.
func (s *ExpenseStore) Sort(ctx context.Context, criteria core.SortCriteria) error {
	s.mu.Lock()
	if err := core.SortExpenses(s.items, criteria); err != nil {
		s.mu.Unlock()
		return err
	}
	n := len(s.items)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Expenses sorted", "criteria", string(criteria), log.FieldOperation, log.OpSort)
	s.obs.notify(ctx, core.ChangeEvent{Kind: core.ChangeSorted, Slot: storage.ExpensesSlot, Count: n, At: s.now()})
	return nil
}

// Filter returns the expenses dated inside r; a nil range returns everything.
func (s *ExpenseStore) Filter(r *core.DateRange) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.FilterByRange(s.items, r)
}

// Subscribe registers obs for change events and returns its cancel func.
func (s *ExpenseStore) Subscribe(obs Observer) func() {
	return s.obs.subscribe(obs)
}

func (s *ExpenseStore) indexLocked(id core.ExpenseID) int {
	return slices.IndexFunc(s.items, func(e core.Expense) bool { return e.ID == id })
}

// persistLocked writes the whole collection. Failures are logged and dropped:
// the in-memory state stays authoritative.
func (s *ExpenseStore) persistLocked(ctx context.Context) {
	data, err := EncodeExpenses(s.items)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode expenses", log.NewFields().
			WithError(err).WithErrorType(log.ErrorTypeInternal).WithSlot(storage.ExpensesSlot).ToSlice()...)
		return
	}
	if err := s.slots.Save(ctx, storage.ExpensesSlot, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist expenses", log.NewFields().
			WithError(err).WithErrorType(log.ErrorTypeDatabase).WithSlot(storage.ExpensesSlot).
			WithOperation(log.OpSave).WithCount(len(s.items)).ToSlice()...)
	}
}

func (s *ExpenseStore) restore(ctx context.Context) []core.Expense {
	data, err := s.slots.Load(ctx, storage.ExpensesSlot)
	if errors.Is(err, storage.ErrSlotNotFound) {
		s.logger.DebugContext(ctx, "No saved expenses, starting empty", log.FieldSlot, storage.ExpensesSlot)
		return nil
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read saved expenses, starting empty", log.NewFields().
			WithError(err).WithErrorType(log.ErrorTypeDatabase).WithSlot(storage.ExpensesSlot).ToSlice()...)
		return nil
	}

	items, err := DecodeExpenses(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Saved expenses are corrupt, starting empty", log.NewFields().
			WithError(err).WithErrorType(log.ErrorTypeDecode).WithSlot(storage.ExpensesSlot).ToSlice()...)
		return nil
	}

	// Keep the id invariant even if the slot was edited by hand.
	seen := make(map[core.ExpenseID]struct{}, len(items))
	out := items[:0]
	for _, e := range items {
		if e.ID.IsZero() {
			e.ID = core.NewExpenseID()
		}
		if _, dup := seen[e.ID]; dup {
			s.logger.WarnContext(ctx, "Dropping saved expense with duplicate id", log.FieldExpenseID, e.ID.String())
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}

	s.logger.InfoContext(ctx, "Restored expenses", log.FieldSlot, storage.ExpensesSlot, log.FieldCount, len(out), log.FieldOperation, log.OpLoad)
	return out
}

// EncodeExpenses serializes a collection in the slot format.
func EncodeExpenses(items []core.Expense) ([]byte, error) {
	if items == nil {
		items = []core.Expense{}
	}
	return json.Marshal(items)
}

// DecodeExpenses is the inverse of EncodeExpenses.
func DecodeExpenses(data []byte) ([]core.Expense, error) {
	var items []core.Expense
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	return items, nil
}

// normalize copies e with its date in UTC, which is what the slot round-trips.
func normalize(e core.Expense) core.Expense {
	e = e.Clone()
	e.Date = e.Date.UTC()
	return e
}

func cloneExpenses(items []core.Expense) []core.Expense {
	out := make([]core.Expense, len(items))
	for i, e := range items {
		out[i] = e.Clone()
	}
	return out
}

func uniquePositions(positions []int) []int {
	out := append([]int(nil), positions...)
	sort.Ints(out)
	return slices.Compact(out)
}
