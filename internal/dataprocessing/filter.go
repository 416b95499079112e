package dataprocessing

import (
	"fmt"

	"github.com/araddon/dateparse"
)

// Columns names the table headers the filter and summary operate on.
// The values come from configuration, never from the engine itself.
type Columns struct {
	Date     string
	Category string
}

// FilterSpec describes the requested filter clauses. An empty field means
// the clause is absent and is a no-op.
type FilterSpec struct {
	// Date is the raw user-supplied date string for the exact-date clause.
	Date string
	// Category is the exact, case-sensitive match value for the category clause.
	Category string
}

// Empty reports whether no clause is set.
func (s FilterSpec) Empty() bool {
	return s.Date == "" && s.Category == ""
}

// BadInputError reports a malformed filter value supplied by the user.
// The offending clause is skipped; other clauses still apply.
type BadInputError struct {
	Field string
	Value string
}

func (e *BadInputError) Error() string {
	return fmt.Sprintf("invalid %s filter value: %q", e.Field, e.Value)
}

// FilterResult is the outcome of applying a FilterSpec to a table.
type FilterResult struct {
	// Table holds the matching subset, in original row order.
	Table *Table
	// SourceRows holds the original row positions of the subset, used as
	// row identity by the complement computation.
	SourceRows []int
	// Applied describes every clause that was actually applied.
	Applied []string
	// Warnings holds missing-column notes for clauses that were skipped.
	Warnings []string
	// BadInput is set when the date value failed to parse; that clause was
	// skipped and the table is unaffected by it.
	BadInput *BadInputError
}

// Count returns the number of matching rows.
func (r *FilterResult) Count() int {
	return r.Table.Len()
}

// Filter applies the spec's clauses to the table in sequence (logical AND),
// each clause narrowing the output of the previous one. The original table
// is never modified. An empty spec returns all rows unchanged.
func Filter(t *Table, spec FilterSpec, cols Columns) *FilterResult {
	keep := make([]int, t.Len())
	for i := range keep {
		keep[i] = i
	}

	result := &FilterResult{}

	if spec.Date != "" {
		keep = applyDateClause(t, spec.Date, cols.Date, keep, result)
	}
	if spec.Category != "" {
		keep = applyCategoryClause(t, spec.Category, cols.Category, keep, result)
	}

	result.Table = t.Select(keep)
	result.SourceRows = keep
	return result
}

// applyDateClause keeps rows whose normalized date equals the supplied date
// exactly. A missing column or an unparsable filter value skips the clause.
func applyDateClause(t *Table, value, column string, keep []int, result *FilterResult) []int {
	col, ok := t.Column(column)
	if !ok {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Column %q not found for filtering.", column))
		return keep
	}

	want, err := dateparse.ParseAny(value)
	if err != nil {
		result.BadInput = &BadInputError{Field: column, Value: value}
		return keep
	}
	wantDate := truncateToDate(want)

	kept := keep[:0]
	for _, row := range keep {
		if parseDate(t.Value(row, col)).Equal(wantDate) {
			kept = append(kept, row)
		}
	}

	result.Applied = append(result.Applied, fmt.Sprintf("%s = %s", column, value))
	return kept
}

// applyCategoryClause keeps rows whose cell equals the supplied string using
// exact, case-sensitive comparison. Missing cells compare as empty text.
func applyCategoryClause(t *Table, value, column string, keep []int, result *FilterResult) []int {
	col, ok := t.Column(column)
	if !ok {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Column %q not found for filtering.", column))
		return keep
	}

	kept := keep[:0]
	for _, row := range keep {
		if t.Value(row, col) == value {
			kept = append(kept, row)
		}
	}

	result.Applied = append(result.Applied, fmt.Sprintf("%s = %q", column, value))
	return kept
}
