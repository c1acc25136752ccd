package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SortByDate   SortCriteria = "date"
	SortByAmount SortCriteria = "amount"

	// AllCategories is the category selection that disables category filtering.
	AllCategories = "All"
)

type (
	// ExpenseID is an opaque identifier assigned when an expense is created.
	ExpenseID string

	SortCriteria string

	Expense struct {
		ID            ExpenseID `json:"id"`
		Category      string    `json:"category"`
		Amount        float64   `json:"amount"`
		Description   string    `json:"description"`
		Date          time.Time `json:"date"`
		PaymentMethod string    `json:"paymentMethod"`
		Tags          []string  `json:"tags"`
	}

	// DateRange is an inclusive [Start, End] bound.
	DateRange struct {
		Start time.Time
		End   time.Time
	}
)

// DefaultCategories seed the registry on first run.
var DefaultCategories = []string{"Food", "Transport", "Entertainment", "Utilities"}

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateID        = errors.New("duplicate expense id")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyPaymentMethod = errors.New("empty payment method")
	ErrEmptyLabel         = errors.New("empty category label")
	ErrEmptyField         = errors.New("field is required")
	ErrZeroDate           = errors.New("date cannot be zero")
	ErrInvalidRange       = errors.New("range start is after range end")
	ErrInvalidID          = errors.New("invalid expense id")
	ErrUnknownSort        = errors.New("unknown sort criteria")
)

// NewExpenseID returns a fresh random identifier.
func NewExpenseID() ExpenseID {
	return ExpenseID(uuid.NewString())
}

// ParseExpenseID checks that s is a well-formed identifier. Ids are opaque:
// the trimmed input is returned as is, so its case matches the stored record.
func ParseExpenseID(s string) (ExpenseID, error) {
	s = strings.TrimSpace(s)
	if err := uuid.Validate(s); err != nil {
		return "", &ValidationError{Field: "id", Err: ErrInvalidID}
	}
	return ExpenseID(s), nil
}

func (id ExpenseID) String() string {
	return string(id)
}

// IsZero reports whether no identifier has been assigned yet.
func (id ExpenseID) IsZero() bool {
	return id == ""
}

func (c SortCriteria) IsValid() bool {
	switch c {
	case SortByDate, SortByAmount:
		return true
	default:
		return false
	}
}

// ParseSortCriteria maps user input to a SortCriteria.
func ParseSortCriteria(s string) (SortCriteria, error) {
	c := SortCriteria(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrUnknownSort
	}
	return c, nil
}

// Validate enforces the rules shared by every add and edit path.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if strings.TrimSpace(e.PaymentMethod) == "" {
		return &ValidationError{Field: "paymentMethod", Err: ErrEmptyPaymentMethod}
	}
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if e.Amount < 0 {
		return &ValidationError{Field: "amount", Err: ErrNegativeAmount}
	}
	if e.Date.IsZero() {
		return &ValidationError{Field: "date", Err: ErrZeroDate}
	}
	return nil
}

// Clone returns a copy that shares no memory with e.
func (e Expense) Clone() Expense {
	if e.Tags != nil {
		e.Tags = append([]string(nil), e.Tags...)
	}
	return e
}

// NewDateRange builds a range and rejects an inverted bound.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	return r, r.Validate()
}

func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether t lies within the range, both ends included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Day returns midnight UTC of the given calendar day.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
