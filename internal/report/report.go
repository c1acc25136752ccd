// Package report renders summaries and expense lists for terminal output.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"budgetplanner/internal/core"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown report format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// document is the structured form of a summary. Breakdowns are lists so the
// label order is stable in every format.
type document struct {
	Total           float64            `json:"total" yaml:"total"`
	ByCategory      []core.GroupAmount `json:"byCategory" yaml:"byCategory"`
	ByPaymentMethod []core.GroupAmount `json:"byPaymentMethod" yaml:"byPaymentMethod"`
	ByTag           []core.GroupAmount `json:"byTag" yaml:"byTag"`
}

// WriteSummary renders s in the requested format.
func WriteSummary(w io.Writer, s core.Summary, format Format) error {
	doc := document{
		Total:           s.Total,
		ByCategory:      core.Breakdown(s.ByCategory),
		ByPaymentMethod: core.Breakdown(s.ByPaymentMethod),
		ByTag:           core.Breakdown(s.ByTag),
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return writeSummaryText(w, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeSummaryText(w io.Writer, doc document) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Total Expenses:\t%s\t\n", money(doc.Total))

	sections := []struct {
		title  string
		groups []core.GroupAmount
	}{
		{"By Category", doc.ByCategory},
		{"By Payment Method", doc.ByPaymentMethod},
		{"By Tags", doc.ByTag},
	}
	for _, sec := range sections {
		fmt.Fprintf(tw, "\t\t\n%s\t\t\n", sec.title)
		for _, g := range sec.groups {
			fmt.Fprintf(tw, "  %s\t%s\t\n", g.Name, money(g.Amount))
		}
	}
	return tw.Flush()
}

// WriteExpenses prints one expense per line with its list position.
func WriteExpenses(w io.Writer, expenses []core.Expense) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDATE\tCATEGORY\tAMOUNT\tPAYMENT\tDESCRIPTION\tTAGS\tID")
	for i, e := range expenses {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i,
			e.Date.Format("2006-01-02"),
			e.Category,
			core.FormatAmount(e.Amount),
			e.PaymentMethod,
			e.Description,
			strings.Join(e.Tags, ", "),
			e.ID)
	}
	return tw.Flush()
}

func money(v float64) string {
	return "$" + core.FormatAmount(v)
}
