package export

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetplanner/internal/core"
	"budgetplanner/internal/services"
	"budgetplanner/internal/storage/memory"
)

func sampleExpenses() []core.Expense {
	return []core.Expense{
		{
			ID:            "2b1c9d3e-8f4a-4e5b-9c6d-7e8f9a0b1c2d",
			Category:      "Food",
			Amount:        12.5,
			Description:   "Lunch, with colleagues",
			Date:          core.Day(2024, 1, 1),
			PaymentMethod: "Cash",
			Tags:          []string{"work", "team"},
		},
		{
			ID:            "3c2d0e4f-9a5b-4f6c-8d7e-8f9a0b1c2d3e",
			Category:      "Transport",
			Amount:        0.1,
			Description:   "Bus",
			Date:          core.Day(2024, 2, 29),
			PaymentMethod: "Card",
		},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	for _, delim := range []rune{',', ';', '\t'} {
		t.Run(string(delim), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, sampleExpenses(), Options{Delimiter: delim}))

			got, err := Read(&buf, Options{Delimiter: delim})
			require.NoError(t, err)
			assert.Equal(t, sampleExpenses(), got)
		})
	}
}

func TestWrite_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleExpenses()[:1], Options{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,date,category,amount,description,payment_method,tags", lines[0])
	assert.Contains(t, lines[1], `"Lunch, with colleagues"`)
	assert.Contains(t, lines[1], "work|team")
	assert.Contains(t, lines[1], ",12.5,")
}

func TestRead(t *testing.T) {
	t.Run("plain dates and comma amounts", func(t *testing.T) {
		in := "id;date;category;amount;description;payment_method;tags\n" +
			";2024-03-05;Food;4,20;Coffee;Cash; morning | treat \n"
		got, err := Read(strings.NewReader(in), Options{Delimiter: ';'})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].ID.IsZero())
		assert.Equal(t, core.Day(2024, 3, 5), got[0].Date)
		assert.Equal(t, 4.2, got[0].Amount)
		assert.Equal(t, []string{"morning", "treat"}, got[0].Tags)
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := Read(strings.NewReader(""), Options{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	bad := []struct {
		name string
		row  string
		is   error
	}{
		{"bad amount", ",2024-01-01,Food,abc,x,Cash,", core.ErrInvalidAmount},
		{"negative amount", ",2024-01-01,Food,-3,x,Cash,", core.ErrNegativeAmount},
		{"bad date", ",yesterday,Food,3,x,Cash,", core.ErrZeroDate},
		{"bad id", "nope,2024-01-01,Food,3,x,Cash,", core.ErrInvalidID},
		{"blank category", ",2024-01-01, ,3,x,Cash,", core.ErrEmptyCategory},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			in := "id,date,category,amount,description,payment_method,tags\n" + tt.row + "\n"
			_, err := Read(strings.NewReader(in), Options{})
			assert.ErrorIs(t, err, tt.is)
			assert.Contains(t, err.Error(), "row 1")
		})
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	planner, err := services.Open(ctx, memory.New(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleExpenses(), Options{}))
	data := buf.Bytes()

	res, err := Import(ctx, bytes.NewReader(data), Options{}, planner, nil)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Added: 2}, res)
	assert.Equal(t, sampleExpenses(), planner.ListExpenses())

	res, err = Import(ctx, bytes.NewReader(data), Options{}, planner, nil)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 2}, res)
	assert.Len(t, planner.ListExpenses(), 2)
}

func TestImport_SkipsUppercaseIDsAlreadyStored(t *testing.T) {
	ctx := context.Background()
	planner, err := services.Open(ctx, memory.New(), nil)
	require.NoError(t, err)

	e := sampleExpenses()[0]
	e.ID = "E621E1F8-C36C-495A-93FC-0C247A3E6E5F"
	_, err = planner.AddExpense(ctx, e)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, planner.ListExpenses(), Options{}))

	res, err := Import(ctx, &buf, Options{}, planner, nil)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 1}, res)
	assert.Equal(t, []core.Expense{e}, planner.ListExpenses())
}
