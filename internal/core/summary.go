package core

import "sort"

// GroupAmount represents an amount aggregated under one label.
type GroupAmount struct {
	Name   string  `json:"name" yaml:"name"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// Summary is the full set of aggregates over an expense collection.
type Summary struct {
	Total           float64            `json:"total" yaml:"total"`
	ByCategory      map[string]float64 `json:"byCategory" yaml:"byCategory"`
	ByPaymentMethod map[string]float64 `json:"byPaymentMethod" yaml:"byPaymentMethod"`
	ByTag           map[string]float64 `json:"byTag" yaml:"byTag"`
}

// Total sums every amount. An empty collection totals 0.
func Total(expenses []Expense) float64 {
	var acc accumulator
	for _, e := range expenses {
		acc.add(e.Amount)
	}
	return acc.value()
}

// ByCategory groups amounts by exact category label.
func ByCategory(expenses []Expense) map[string]float64 {
	return groupBy(expenses, func(e Expense) []string { return []string{e.Category} })
}

// ByPaymentMethod groups amounts by exact payment method.
func ByPaymentMethod(expenses []Expense) map[string]float64 {
	return groupBy(expenses, func(e Expense) []string { return []string{e.PaymentMethod} })
}

// ByTag adds the full amount of an expense to each of its tags. The amount is
// not split, so the bucket sum can exceed Total. Untagged expenses are skipped.
func ByTag(expenses []Expense) map[string]float64 {
	return groupBy(expenses, func(e Expense) []string { return e.Tags })
}

// Summarize computes every aggregate in one call.
func Summarize(expenses []Expense) Summary {
	return Summary{
		Total:           Total(expenses),
		ByCategory:      ByCategory(expenses),
		ByPaymentMethod: ByPaymentMethod(expenses),
		ByTag:           ByTag(expenses),
	}
}

// Breakdown returns the groups sorted by label.
func Breakdown(groups map[string]float64) []GroupAmount {
	out := make([]GroupAmount, 0, len(groups))
	for _, name := range SortedKeys(groups) {
		out = append(out, GroupAmount{Name: name, Amount: groups[name]})
	}
	return out
}

// SortedKeys returns the map keys in lexicographic order.
func SortedKeys(groups map[string]float64) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func groupBy(expenses []Expense, keys func(Expense) []string) map[string]float64 {
	accs := map[string]*accumulator{}
	for _, e := range expenses {
		for _, k := range keys(e) {
			acc, ok := accs[k]
			if !ok {
				acc = &accumulator{}
				accs[k] = acc
			}
			acc.add(e.Amount)
		}
	}
	out := make(map[string]float64, len(accs))
	for k, acc := range accs {
		out[k] = acc.value()
	}
	return out
}
