package dataprocessing

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// MissingColumnError reports that a named column is absent from a table.
// It is a warning condition for filtering (the clause is skipped) and an
// empty-result condition for summarizing.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// NormalizeDates coerces the named column into calendar dates, one entry per
// row. Unparsable or missing values come back as the zero time; rows are
// never dropped here, only annotated. Any time-of-day component is discarded.
func NormalizeDates(t *Table, column string) ([]time.Time, error) {
	col, ok := t.Column(column)
	if !ok {
		return nil, &MissingColumnError{Column: column}
	}

	dates := make([]time.Time, t.Len())
	for i := range t.Rows() {
		dates[i] = parseDate(t.Value(i, col))
	}
	return dates, nil
}

// parseDate parses a single date-like value, returning the zero time when
// nothing parseable is present.
func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	parsed, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}
	}
	return truncateToDate(parsed)
}

// truncateToDate drops the time-of-day component, keeping only the calendar
// date in UTC for comparison and grouping.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
