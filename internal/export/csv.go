// Package export moves expenses in and out of CSV files.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
)

// TagSeparator joins tags inside the single tags column.
const TagSeparator = "|"

const dateLayout = "2006-01-02"

// Row is one CSV line.
type Row struct {
	ID            string `csv:"id"`
	Date          string `csv:"date"`
	Category      string `csv:"category"`
	Amount        string `csv:"amount"`
	Description   string `csv:"description"`
	PaymentMethod string `csv:"payment_method"`
	Tags          string `csv:"tags"`
}

// Options controls the CSV dialect.
type Options struct {
	Delimiter rune
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

// NewRow flattens an expense. Dates keep full precision so a round trip is
// lossless; amounts are written in shortest decimal form.
func NewRow(e core.Expense) Row {
	return Row{
		ID:            e.ID.String(),
		Date:          e.Date.Format(time.RFC3339Nano),
		Category:      e.Category,
		Amount:        decimal.NewFromFloat(e.Amount).String(),
		Description:   e.Description,
		PaymentMethod: e.PaymentMethod,
		Tags:          strings.Join(e.Tags, TagSeparator),
	}
}

// Expense converts the row back. Dates may be RFC 3339 or YYYY-MM-DD.
func (r Row) Expense() (core.Expense, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return core.Expense{}, &core.ValidationError{Field: "date", Err: err}
	}
	amount, err := core.ParseAmount(r.Amount)
	if err != nil {
		return core.Expense{}, &core.ValidationError{Field: "amount", Err: err}
	}
	var id core.ExpenseID
	if strings.TrimSpace(r.ID) != "" {
		if id, err = core.ParseExpenseID(r.ID); err != nil {
			return core.Expense{}, err
		}
	}

	var tags []string
	for _, t := range strings.Split(r.Tags, TagSeparator) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	e := core.Expense{
		ID:            id,
		Category:      r.Category,
		Amount:        amount,
		Description:   r.Description,
		Date:          date,
		PaymentMethod: r.PaymentMethod,
		Tags:          tags,
	}
	return e, e.Validate()
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, core.ErrZeroDate
	}
	return t, nil
}

// Write marshals expenses with a header line.
func Write(w io.Writer, expenses []core.Expense, opts Options) error {
	rows := make([]Row, len(expenses))
	for i, e := range expenses {
		rows[i] = NewRow(e)
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = opts.delimiter()
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("write CSV: %w", err)
	}
	return nil
}

// Read parses every row. The first bad row fails the whole read; its error
// names the data line number, counting from 1 after the header.
func Read(r io.Reader, opts Options) ([]core.Expense, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = opts.delimiter()

	var rows []Row
	if err := gocsv.UnmarshalCSV(csvReader, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read CSV: %w", err)
	}

	out := make([]core.Expense, 0, len(rows))
	for i, row := range rows {
		e, err := row.Expense()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Adder receives imported expenses.
type Adder interface {
	AddExpense(ctx context.Context, e core.Expense) (core.Expense, error)
}

// ImportResult summarises an import.
type ImportResult struct {
	Added   int
	Skipped int
}

// Import reads r and adds each expense to target. Rows whose id already exists
// are skipped so re-importing an export is harmless.
func Import(ctx context.Context, r io.Reader, opts Options, target Adder, logger *log.Logger) (ImportResult, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentExport)

	expenses, err := Read(r, opts)
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	for _, e := range expenses {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, err := target.AddExpense(ctx, e); err != nil {
			if errors.Is(err, core.ErrDuplicateID) {
				res.Skipped++
				logger.DebugContext(ctx, "Skipping existing expense", log.FieldExpenseID, e.ID.String())
				continue
			}
			return res, fmt.Errorf("import expense %s: %w", e.ID, err)
		}
		res.Added++
	}

	logger.InfoContext(ctx, "Imported expenses",
		log.FieldOperation, log.OpImport,
		"added", res.Added,
		"skipped", res.Skipped)
	return res, nil
}
